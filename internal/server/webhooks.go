package server

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"hookScope/internal/model"
	"hookScope/internal/normalize"
)

const maxWebhookBody = 32 << 20

type webhookResponse struct {
	Success   bool `json:"success"`
	Processed int  `json:"processed"`
}

func (s *Server) handleWebhook(kind normalize.BatchKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		defer func() {
			if rec := recover(); rec != nil {
				s.metrics.WebhookHandled(string(kind), "error", started)
				s.logger.Error("webhook panic", zap.String("kind", string(kind)), zap.Any("panic", rec))
				writeError(w, http.StatusInternalServerError, fmt.Sprintf("internal error: %v", rec))
			}
		}()

		if !s.authorized(r) {
			s.metrics.WebhookHandled(string(kind), "unauthorized", started)
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var payload model.Payload
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxWebhookBody)).Decode(&payload); err != nil {
			s.metrics.WebhookHandled(string(kind), "error", started)
			s.logger.Warn("decode webhook", zap.String("kind", string(kind)), zap.Error(err))
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("decode payload: %v", err))
			return
		}

		events, parseErrs := s.pipeline.Ingest(r.Context(), kind, payload)
		s.metrics.WebhookHandled(string(kind), "ok", started)
		s.logger.Info("webhook processed",
			zap.String("kind", string(kind)),
			zap.Int("blocks", len(payload.Apply)),
			zap.Int("events", len(events)),
			zap.Int("errors", len(parseErrs)),
		)
		writeJSON(w, http.StatusOK, webhookResponse{Success: true, Processed: len(events)})
	}
}

func (s *Server) authorized(r *http.Request) bool {
	if s.secret == "" {
		return true
	}
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), []byte(s.secret)) == 1
}
