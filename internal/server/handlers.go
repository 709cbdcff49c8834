package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/MeKo-Tech/gs1decode/internal/barcode"
	"github.com/MeKo-Tech/gs1decode/internal/version"
	"golang.org/x/text/language"
)

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sym := s.defaultSymbology.String()
	if s.autoDetect {
		sym = symbologyAuto
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:     "healthy",
		Version:    version.String(),
		Time:       time.Now().UTC().Format(time.RFC3339),
		Prefixes:   len(barcode.PrefixTable()),
		Symbology:  sym,
		Language:   s.language.String(),
		RateLimits: s.rateLimiter != nil,
	})
}

// decodeHandler decodes a single code given as query parameters (GET) or a
// JSON body (POST).
func (s *Server) decodeHandler(w http.ResponseWriter, r *http.Request) {
	var req DecodeRequest
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		req = DecodeRequest{Code: q.Get("code"), Symbology: q.Get("symbology"), Lang: q.Get("lang")}
	case http.MethodPost:
		r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeErrorResponse(w, "Invalid JSON request body: "+err.Error(), http.StatusBadRequest)
			return
		}
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sym, auto, err := parseSymbologyParam(req.Symbology, s.defaultSymbology, s.autoDetect)
	if err != nil {
		s.writeErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	tag, err := s.requestLanguage(req.Lang)
	if err != nil {
		s.writeErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !s.consumeCodes(w, r, 1) {
		return
	}

	resp := s.decode(req.Code, sym, auto, tag)
	status := http.StatusOK
	if !resp.Success {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, resp)
}

// decode runs one code through the decoder and builds the API response.
func (s *Server) decode(code string, sym barcode.Symbology, auto bool, tag language.Tag) DecodeResponse {
	var (
		result *barcode.DecodedBarcode
		err    error
	)
	if auto {
		result, err = barcode.DecodeAuto(code)
	} else {
		result, err = barcode.Decode(code, sym)
	}

	if err != nil {
		label := sym.String()
		if auto {
			label = symbologyAuto
		}
		resp := DecodeResponse{Success: false, Error: err.Error(), ErrorType: "decode_error"}
		var decodeErr *barcode.DecodeError
		if errors.As(err, &decodeErr) {
			resp.ErrorType = decodeErr.Kind.String()
			resp.Details = decodeErr
		}
		decodeTotal.WithLabelValues(label, resp.ErrorType).Inc()
		return resp
	}

	decodeTotal.WithLabelValues(result.Symbology.String(), "valid").Inc()
	return DecodeResponse{
		Success:  true,
		Result:   result,
		Region:   result.LocalizedRegionName(tag),
		Language: tag.String(),
	}
}

// requestLanguage resolves a lang parameter, falling back to the server default.
func (s *Server) requestLanguage(lang string) (language.Tag, error) {
	if lang == "" {
		return s.language, nil
	}
	return barcode.ParseLanguage(lang)
}

// prefixesHandler lists the GS1 prefix table.
func (s *Server) prefixesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	tag, err := s.requestLanguage(r.URL.Query().Get("lang"))
	if err != nil {
		s.writeErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	table := barcode.PrefixTable()
	infos := make([]PrefixInfo, len(table))
	for i, region := range table {
		infos[i] = toPrefixInfo(region, tag)
	}

	writeJSON(w, http.StatusOK, PrefixesResponse{
		Prefixes: infos,
		Count:    len(infos),
		Language: tag.String(),
	})
}

// prefixHandler resolves a single 3-digit prefix from /prefixes/{prefix}.
func (s *Server) prefixHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	prefix := strings.TrimPrefix(r.URL.Path, "/prefixes/")
	if len(prefix) != 3 || !isDigits(prefix) {
		s.writeErrorResponse(w, "prefix must be exactly 3 digits", http.StatusBadRequest)
		return
	}

	tag, err := s.requestLanguage(r.URL.Query().Get("lang"))
	if err != nil {
		s.writeErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp := PrefixResponse{Prefix: prefix, Name: barcode.UnknownRegion}
	if region, ok := barcode.ResolvePrefixRegion(prefix); ok {
		info := toPrefixInfo(region, tag)
		resp.Found = true
		resp.Name = region.Name
		resp.Region = &info
	}
	if resp.Region != nil {
		resp.LocalizedName = resp.Region.LocalizedName
	} else if localized := barcode.LocalizedUnknownRegion(tag); localized != resp.Name {
		resp.LocalizedName = localized
	}
	writeJSON(w, http.StatusOK, resp)
}

func toPrefixInfo(region barcode.PrefixRegion, tag language.Tag) PrefixInfo {
	info := PrefixInfo{
		Range: region.Range(),
		Start: region.Start,
		End:   region.End,
		Name:  region.Name,
		Codes: region.Codes,
		Note:  region.LocalizedNote(tag),
	}
	if localized := region.LocalizedName(tag); localized != region.Name {
		info.LocalizedName = localized
	}
	return info
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeErrorResponse writes a JSON error response.
func (s *Server) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, statusCode, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}
