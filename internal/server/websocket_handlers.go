package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	wsReadTimeout  = 60 * time.Second
	wsPingInterval = 30 * time.Second
	wsWriteTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketDecodeRequest is one client message. Type is "decode" (Code) or
// "batch" (Codes).
type WebSocketDecodeRequest struct {
	Type      string   `json:"type"`
	RequestID string   `json:"request_id,omitempty"`
	Code      string   `json:"code,omitempty"`
	Codes     []string `json:"codes,omitempty"`
	Symbology string   `json:"symbology,omitempty"`
	Lang      string   `json:"lang,omitempty"`
}

// WebSocketConnWriter is an interface for writing WebSocket messages.
type WebSocketConnWriter interface {
	WriteMessage(messageType int, data []byte) error
}

// WebSocketDecodeResponse is one server message.
type WebSocketDecodeResponse struct {
	Type      string      `json:"type"`   // "decode_result", "batch_result" or "error"
	Status    string      `json:"status"` // "completed" or "error"
	Result    interface{} `json:"result,omitempty"`
	Error     string      `json:"error,omitempty"`
	ErrorType string      `json:"error_type,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// decodeWebSocketHandler streams decode requests over a WebSocket connection.
func (s *Server) decodeWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade connection to WebSocket", "error", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	websocketConnections.Inc()
	defer websocketConnections.Dec()

	slog.Info("WebSocket connection established", "remote_addr", r.RemoteAddr)

	s.handleWebSocketConnection(r.Context(), conn, getClientIP(r))
}

// handleWebSocketConnection processes messages until the client disconnects.
func (s *Server) handleWebSocketConnection(ctx context.Context, conn *websocket.Conn, clientID string) {
	conn.SetReadLimit(s.wsMaxMessageBytes)
	_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		return nil
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(wsPingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(wsWriteTimeout)); err != nil {
					return
				}
			}
		}
	}()

	limiter := rate.NewLimiter(rate.Limit(s.wsMessagesPerSecond), s.wsBurst)

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Error("WebSocket error", "error", err)
			}
			return
		}

		websocketMessagesTotal.WithLabelValues("received").Inc()

		if messageType == websocket.TextMessage {
			s.handleWebSocketMessage(ctx, conn, limiter, clientID, data)
		}
	}
}

// handleWebSocketMessage decodes one request and writes exactly one response.
func (s *Server) handleWebSocketMessage(ctx context.Context, conn WebSocketConnWriter, limiter *rate.Limiter, clientID string, data []byte) {
	if limiter != nil && !limiter.Allow() {
		rateLimitHits.WithLabelValues("websocket").Inc()
		s.sendWebSocketError(conn, "", "rate_limit_exceeded",
			fmt.Sprintf("Too many messages (limit %.0f/s, burst %d)", float64(limiter.Limit()), limiter.Burst()))
		return
	}

	var req WebSocketDecodeRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.sendWebSocketError(conn, "", "invalid_request", fmt.Sprintf("Failed to parse request: %v", err))
		return
	}

	requestID := req.RequestID
	if requestID == "" {
		requestID = strconv.FormatInt(time.Now().UnixNano(), 10)
	}

	tag, err := s.requestLanguage(req.Lang)
	if err != nil {
		s.sendWebSocketError(conn, requestID, "invalid_request", err.Error())
		return
	}

	switch req.Type {
	case "decode", "":
		sym, auto, err := parseSymbologyParam(req.Symbology, s.defaultSymbology, s.autoDetect)
		if err != nil {
			s.sendWebSocketError(conn, requestID, "invalid_request", err.Error())
			return
		}
		if !s.reserveWebSocketCodes(conn, requestID, clientID, 1) {
			return
		}
		resp := s.decode(req.Code, sym, auto, tag)
		s.sendWebSocketResponse(conn, WebSocketDecodeResponse{
			Type:      "decode_result",
			Status:    "completed",
			Result:    resp,
			RequestID: requestID,
		})
	case "batch":
		if len(req.Codes) == 0 || len(req.Codes) > s.maxBatchSize {
			s.sendWebSocketError(conn, requestID, "invalid_request",
				fmt.Sprintf("Batch must contain between 1 and %d codes", s.maxBatchSize))
			return
		}
		opts, err := s.batchOptions(req.Symbology, tag)
		if err != nil {
			s.sendWebSocketError(conn, requestID, "invalid_request", err.Error())
			return
		}
		if !s.reserveWebSocketCodes(conn, requestID, clientID, len(req.Codes)) {
			return
		}
		resp, err := s.decodeBatch(ctx, req.Codes, opts)
		if err != nil {
			s.sendWebSocketError(conn, requestID, "processing_error", err.Error())
			return
		}
		s.sendWebSocketResponse(conn, WebSocketDecodeResponse{
			Type:      "batch_result",
			Status:    "completed",
			Result:    resp,
			RequestID: requestID,
		})
	default:
		s.sendWebSocketError(conn, requestID, "invalid_request", "Unsupported request type: "+req.Type)
	}
}

func (s *Server) reserveWebSocketCodes(conn WebSocketConnWriter, requestID, clientID string, n int) bool {
	if s.rateLimiter == nil {
		return true
	}
	if err := s.rateLimiter.ReserveCodes(clientID, n); err != nil {
		recordRateLimitHit(err)
		s.sendWebSocketError(conn, requestID, "quota_exceeded", err.Error())
		return false
	}
	return true
}

// sendWebSocketResponse sends a response message over WebSocket.
func (s *Server) sendWebSocketResponse(conn WebSocketConnWriter, response WebSocketDecodeResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		slog.Error("Failed to marshal WebSocket response", "error", err)
		return
	}

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Error("Failed to send WebSocket message", "error", err)
		return
	}

	websocketMessagesTotal.WithLabelValues("sent").Inc()
}

// sendWebSocketError sends an error message over WebSocket.
func (s *Server) sendWebSocketError(conn WebSocketConnWriter, requestID, errorType, message string) {
	s.sendWebSocketResponse(conn, WebSocketDecodeResponse{
		Type:      "error",
		Status:    "error",
		Error:     message,
		ErrorType: errorType,
		RequestID: requestID,
	})
}
