package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

const (
	defaultHistoryLimit = 50
	defaultTopLimit     = 10
	defaultAlertLimit   = 20
	maxLimit            = 1000
)

type errorResponse struct {
	Error string `json:"error"`
}

func errInvalidParam(key, raw string) error {
	return fmt.Errorf("invalid %s: %q", key, raw)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Error: msg})
}

// queryInt reads a non-negative integer query parameter.
func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errInvalidParam(key, raw)
	}
	return n, nil
}

func queryLimit(r *http.Request, def int) (int, error) {
	n, err := queryInt(r, "limit", def)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		n = def
	}
	if n > maxLimit {
		n = maxLimit
	}
	return n, nil
}

func queryFloat(r *http.Request, key string) (float64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f < 0 {
		return 0, errInvalidParam(key, raw)
	}
	return f, nil
}

func queryBool(r *http.Request, key string) (bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errInvalidParam(key, raw)
	}
	return b, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}
