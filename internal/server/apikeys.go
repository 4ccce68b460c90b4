package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"hookScope/internal/model"
	"hookScope/internal/ratelimit"
)

const apiKeyHeader = "X-API-Key"

type generateKeyRequest struct {
	Owner string `json:"owner"`
	Tier  string `json:"tier"`
}

type generateKeyResponse struct {
	Key       string               `json:"key"`
	Owner     string               `json:"owner"`
	Tier      ratelimit.Tier       `json:"tier"`
	CreatedAt time.Time            `json:"createdAt"`
	ExpiresAt time.Time            `json:"expiresAt"`
	Limits    ratelimit.TierLimits `json:"limits"`
}

type validateKeyRequest struct {
	Key string `json:"key"`
}

// keyErrorResponse reports a rejected key with whatever quota state is known.
type keyErrorResponse struct {
	Error     string         `json:"error"`
	Tier      ratelimit.Tier `json:"tier,omitempty"`
	Limit     int            `json:"limit"`
	Remaining int            `json:"remaining"`
}

type dataResponse struct {
	Tier         ratelimit.Tier       `json:"tier"`
	Stats        model.DashboardStats `json:"stats"`
	TopPools     []model.PoolStats    `json:"topPools,omitempty"`
	TopTokens    []model.TokenStats   `json:"topTokens,omitempty"`
	RecentAlerts []model.WhaleAlert   `json:"recentAlerts,omitempty"`
}

func (s *Server) handleGenerateKey(w http.ResponseWriter, r *http.Request) {
	var req generateKeyRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	tier, err := ratelimit.ParseTier(req.Tier)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := s.limiter.Generate(req.Owner, tier)
	switch {
	case errors.Is(err, ratelimit.ErrKeyExists):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	limits, _ := s.limiter.Limits(rec.Tier)
	writeJSON(w, http.StatusCreated, generateKeyResponse{
		Key:       rec.Key,
		Owner:     rec.Owner,
		Tier:      rec.Tier,
		CreatedAt: rec.CreatedAt,
		ExpiresAt: rec.ExpiresAt,
		Limits:    limits,
	})
}

func (s *Server) handleValidateKey(w http.ResponseWriter, r *http.Request) {
	key := headerKey(r)
	if key == "" && r.ContentLength != 0 {
		var req validateKeyRequest
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		key = strings.TrimSpace(req.Key)
	}

	res, err := s.limiter.Validate(key)
	if err != nil {
		writeKeyError(w, res, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleKeyInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.limiter.Info(headerKey(r))
	if err != nil {
		writeKeyError(w, ratelimit.Validation{}, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleRevokeKey(w http.ResponseWriter, r *http.Request) {
	if err := s.limiter.Revoke(headerKey(r)); err != nil {
		writeKeyError(w, ratelimit.Validation{}, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleData serves dashboard data scoped to the caller's tier.
func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	res, err := s.limiter.Validate(headerKey(r))
	if res.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	}
	if err != nil {
		writeKeyError(w, res, err)
		return
	}

	out := dataResponse{Tier: res.Tier, Stats: s.pipeline.Analytics.Stats()}
	switch res.Tier {
	case ratelimit.TierEnterprise:
		out.TopTokens = s.pipeline.Analytics.TopTokens(defaultTopLimit)
		out.RecentAlerts = s.pipeline.Feed.Recent(defaultAlertLimit)
		fallthrough
	case ratelimit.TierPro:
		out.TopPools = s.pipeline.Analytics.TopPools(defaultTopLimit)
	}
	writeJSON(w, http.StatusOK, out)
}

func headerKey(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(apiKeyHeader))
}

func writeKeyError(w http.ResponseWriter, res ratelimit.Validation, err error) {
	code := http.StatusUnauthorized
	switch {
	case errors.Is(err, ratelimit.ErrExpiredKey):
		code = http.StatusForbidden
	case errors.Is(err, ratelimit.ErrQuotaExceeded):
		code = http.StatusTooManyRequests
	}
	writeJSON(w, code, keyErrorResponse{
		Error:     err.Error(),
		Tier:      res.Tier,
		Limit:     res.Limit,
		Remaining: res.Remaining,
	})
}
