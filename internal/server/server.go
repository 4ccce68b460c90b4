// Package server exposes the webhook, query, API key and notification endpoints over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"hookScope/internal/metrics"
	"hookScope/internal/normalize"
	"hookScope/internal/pipeline"
	"hookScope/internal/ratelimit"
)

// Config controls the HTTP server.
type Config struct {
	Addr string
	// WebhookSecret, when set, must be sent as a Bearer token on every webhook.
	WebhookSecret string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	IdleTimeout   time.Duration
	Metrics       *metrics.Metrics
}

// Server represents the HTTP server with all routes configured.
type Server struct {
	pipeline *pipeline.Pipeline
	limiter  *ratelimit.Limiter
	secret   string
	metrics  *metrics.Metrics
	logger   *zap.Logger
	mux      *http.ServeMux
	server   *http.Server
	started  time.Time
}

func New(cfg Config, p *pipeline.Pipeline, limiter *ratelimit.Limiter, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 15 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 15 * time.Second
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 60 * time.Second
	}

	mux := http.NewServeMux()
	s := &Server{
		pipeline: p,
		limiter:  limiter,
		secret:   cfg.WebhookSecret,
		metrics:  cfg.Metrics,
		logger:   logger,
		mux:      mux,
		server: &http.Server{
			Addr:         cfg.Addr,
			Handler:      mux,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		started: time.Now(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("POST /webhooks/swaps", s.handleWebhook(normalize.BatchSwap))
	s.mux.HandleFunc("POST /webhooks/liquidity", s.handleWebhook(normalize.BatchLiquidity))
	s.mux.HandleFunc("POST /webhooks/ft-transfers", s.handleWebhook(normalize.BatchFTTransfer))
	s.mux.HandleFunc("POST /webhooks/stx-transfers", s.handleWebhook(normalize.BatchSTXTransfer))
	s.mux.HandleFunc("POST /webhooks/nft-transfers", s.handleWebhook(normalize.BatchNFTTransfer))

	s.mux.HandleFunc("GET /dashboard", s.handleDashboard)
	s.mux.HandleFunc("GET /swaps", s.handleSwaps)
	s.mux.HandleFunc("GET /liquidity", s.handleLiquidity)
	s.mux.HandleFunc("GET /transfers", s.handleTransfers)
	s.mux.HandleFunc("GET /pools", s.handlePools)
	s.mux.HandleFunc("GET /tokens", s.handleTokens)
	s.mux.HandleFunc("GET /alerts", s.handleAlerts)
	s.mux.HandleFunc("GET /volume", s.handleVolume)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.Handle("GET /metrics", s.metrics.Handler())

	s.mux.HandleFunc("POST /api-keys/generate", s.handleGenerateKey)
	s.mux.HandleFunc("POST /api-keys/validate", s.handleValidateKey)
	s.mux.HandleFunc("GET /api-keys/info", s.handleKeyInfo)
	s.mux.HandleFunc("DELETE /api-keys", s.handleRevokeKey)
	s.mux.HandleFunc("GET /v1/data", s.handleData)

	s.mux.HandleFunc("POST /notifications/subscriptions", s.handleCreateSubscription)
	s.mux.HandleFunc("GET /notifications/subscriptions", s.handleListSubscriptions)
	s.mux.HandleFunc("DELETE /notifications/subscriptions/{id}", s.handleDeleteSubscription)
	s.mux.HandleFunc("PATCH /notifications/subscriptions/{id}", s.handleToggleSubscription)

	s.mux.HandleFunc("GET /ws", s.pipeline.Hub.Handler())
}

// Handler returns the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start begins listening for HTTP requests. It returns nil after Shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server listening", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
