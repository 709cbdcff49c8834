package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

// mockWebSocketConn records written messages.
type mockWebSocketConn struct {
	sentMessages []sentMessage
}

type sentMessage struct {
	messageType int
	data        []byte
}

func (m *mockWebSocketConn) WriteMessage(messageType int, data []byte) error {
	m.sentMessages = append(m.sentMessages, sentMessage{messageType: messageType, data: data})
	return nil
}

// wsTestResponse mirrors WebSocketDecodeResponse with a typed result.
type wsTestResponse[T any] struct {
	Type      string `json:"type"`
	Status    string `json:"status"`
	Result    T      `json:"result"`
	Error     string `json:"error"`
	ErrorType string `json:"error_type"`
	RequestID string `json:"request_id"`
}

func lastMessage[T any](t *testing.T, conn *mockWebSocketConn) wsTestResponse[T] {
	t.Helper()
	require.NotEmpty(t, conn.sentMessages)
	msg := conn.sentMessages[len(conn.sentMessages)-1]
	assert.Equal(t, websocket.TextMessage, msg.messageType)

	var resp wsTestResponse[T]
	require.NoError(t, json.Unmarshal(msg.data, &resp))
	return resp
}

func TestHandleWebSocketMessage_Decode(t *testing.T) {
	s, err := NewServer(Config{})
	require.NoError(t, err)
	conn := &mockWebSocketConn{}

	s.handleWebSocketMessage(context.Background(), conn, nil, "client",
		[]byte(`{"type":"decode","request_id":"r1","code":"4710088410139"}`))

	require.Len(t, conn.sentMessages, 1)
	resp := lastMessage[DecodeResponse](t, conn)
	assert.Equal(t, "decode_result", resp.Type)
	assert.Equal(t, "completed", resp.Status)
	assert.Equal(t, "r1", resp.RequestID)
	assert.True(t, resp.Result.Success)
	assert.Equal(t, "Taiwan", resp.Result.Region)
}

func TestHandleWebSocketMessage_DecodeFailure(t *testing.T) {
	s, err := NewServer(Config{})
	require.NoError(t, err)
	conn := &mockWebSocketConn{}

	s.handleWebSocketMessage(context.Background(), conn, nil, "client",
		[]byte(`{"code":"12345678901X","symbology":"upca"}`))

	resp := lastMessage[DecodeResponse](t, conn)
	assert.Equal(t, "decode_result", resp.Type)
	assert.NotEmpty(t, resp.RequestID)
	assert.False(t, resp.Result.Success)
	assert.Equal(t, "non_numeric_character", resp.Result.ErrorType)
	require.NotNil(t, resp.Result.Details)
	assert.Equal(t, 11, resp.Result.Details.Position)
	assert.Equal(t, "X", resp.Result.Details.Char)
}

func TestHandleWebSocketMessage_Batch(t *testing.T) {
	s, err := NewServer(Config{DefaultSymbology: "auto", Language: "de"})
	require.NoError(t, err)
	conn := &mockWebSocketConn{}

	s.handleWebSocketMessage(context.Background(), conn, nil, "client",
		[]byte(`{"type":"batch","codes":["4006381333931","4006381333932"]}`))

	resp := lastMessage[BatchDecodeResponse](t, conn)
	assert.Equal(t, "batch_result", resp.Type)
	assert.Equal(t, 2, resp.Result.Summary.Total)
	assert.Equal(t, 1, resp.Result.Summary.Valid)
	assert.Equal(t, "Deutschland", resp.Result.Results[0].Region)
	assert.Equal(t, "checksum_mismatch", resp.Result.Results[1].ErrorType)
}

func TestHandleWebSocketMessage_Errors(t *testing.T) {
	s, err := NewServer(Config{MaxBatchSize: 1})
	require.NoError(t, err)

	tests := []struct {
		name      string
		message   string
		errorType string
	}{
		{"invalid json", `{"type":`, "invalid_request"},
		{"unknown type", `{"type":"scan"}`, "invalid_request"},
		{"bad symbology", `{"code":"1","symbology":"qr"}`, "invalid_request"},
		{"bad language", `{"code":"1","lang":"!!"}`, "invalid_request"},
		{"empty batch", `{"type":"batch"}`, "invalid_request"},
		{"batch too large", `{"type":"batch","codes":["1","2"]}`, "invalid_request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := &mockWebSocketConn{}
			s.handleWebSocketMessage(context.Background(), conn, nil, "client", []byte(tt.message))

			require.Len(t, conn.sentMessages, 1)
			resp := lastMessage[json.RawMessage](t, conn)
			assert.Equal(t, "error", resp.Type)
			assert.Equal(t, "error", resp.Status)
			assert.Equal(t, tt.errorType, resp.ErrorType)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestHandleWebSocketMessage_Throttled(t *testing.T) {
	s, err := NewServer(Config{})
	require.NoError(t, err)
	conn := &mockWebSocketConn{}
	limiter := rate.NewLimiter(rate.Every(time.Hour), 2)

	for range 3 {
		s.handleWebSocketMessage(context.Background(), conn, limiter, "client",
			[]byte(`{"code":"4006381333931"}`))
	}

	require.Len(t, conn.sentMessages, 3)
	resp := lastMessage[json.RawMessage](t, conn)
	assert.Equal(t, "rate_limit_exceeded", resp.ErrorType)
}

func TestHandleWebSocketMessage_Quota(t *testing.T) {
	s, err := NewServer(Config{
		RateLimit: RateLimitConfig{Enabled: true, RequestsPerMinute: 10, RequestsPerHour: 10, MaxCodesPerDay: 1},
	})
	require.NoError(t, err)
	conn := &mockWebSocketConn{}

	s.handleWebSocketMessage(context.Background(), conn, nil, "client", []byte(`{"code":"4006381333931"}`))
	s.handleWebSocketMessage(context.Background(), conn, nil, "client", []byte(`{"code":"4006381333931"}`))

	resp := lastMessage[json.RawMessage](t, conn)
	assert.Equal(t, "quota_exceeded", resp.ErrorType)
}

func TestDecodeWebSocketHandler_RoundTrip(t *testing.T) {
	_, mux := newTestServer(t, Config{})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/decode"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer func() {
		_ = conn.Close()
		_ = resp.Body.Close()
	}()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	require.NoError(t, conn.WriteJSON(WebSocketDecodeRequest{Type: "decode", RequestID: "abc", Code: "5901234123457"}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg wsTestResponse[DecodeResponse]
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "abc", msg.RequestID)
	assert.True(t, msg.Result.Success)
	assert.Equal(t, "Poland", msg.Result.Result.RegionName)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
}
