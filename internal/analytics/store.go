package analytics

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"hookScope/internal/metrics"
	"hookScope/internal/model"
)

const (
	defaultHistoryLimit  = 10_000
	defaultSweepInterval = time.Hour
	retention            = 7 * 24 * time.Hour
	statsWindow          = 24 * time.Hour
)

// Config controls the analytics store.
type Config struct {
	// HistoryLimit bounds the stored events per kind. Oldest events are evicted first.
	HistoryLimit  int
	SweepInterval time.Duration
	Now           func() time.Time
	Metrics       *metrics.Metrics
}

// Store keeps recent events and cumulative pool and token statistics in memory.
type Store struct {
	cfg    Config
	logger *zap.Logger

	mu         sync.RWMutex
	events     map[model.EventKind][]model.Event
	pools      map[string]*poolEntry
	poolOrder  []string
	tokens     map[string]*model.TokenStats
	tokenOrder []string
}

func New(cfg Config, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = defaultHistoryLimit
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = defaultSweepInterval
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Store{
		cfg:    cfg,
		logger: logger,
		events: make(map[model.EventKind][]model.Event, 3),
		pools:  make(map[string]*poolEntry),
		tokens: make(map[string]*model.TokenStats),
	}
}

// Record stores ev and updates pool and token statistics.
func (s *Store) Record(ev model.Event) {
	if ev == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kind := ev.Kind()
	history := append(s.events[kind], ev)
	if over := len(history) - s.cfg.HistoryLimit; over > 0 {
		history = append(history[:0:0], history[over:]...)
	}
	s.events[kind] = history

	switch e := ev.(type) {
	case model.SwapEvent:
		s.applySwap(e)
	case model.LiquidityEvent:
		s.applyLiquidity(e)
	}
}

// Sweep drops events older than the retention window and returns how many were removed.
// Pool and token statistics are kept.
func (s *Store) Sweep(now time.Time) int {
	cutoff := now.Add(-retention).Unix()

	s.mu.Lock()
	removed := 0
	for kind, history := range s.events {
		kept := history[:0]
		for _, ev := range history {
			if ev.Meta().Timestamp < cutoff {
				removed++
				continue
			}
			kept = append(kept, ev)
		}
		for i := len(kept); i < len(history); i++ {
			history[i] = nil
		}
		s.events[kind] = kept
	}
	s.mu.Unlock()

	s.cfg.Metrics.Swept(removed)
	return removed
}

// Run sweeps on every interval until ctx is cancelled.
func (s *Store) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			removed := s.Sweep(s.cfg.Now())
			s.logger.Info("analytics sweep", zap.Int("removed", removed), zap.Int("events", s.Len()))
		}
	}
}

// Len returns the number of stored events across kinds.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, history := range s.events {
		total += len(history)
	}
	return total
}

// Observe implements the normalizer observer contract.
func (s *Store) Observe(_ context.Context, ev model.Event) error {
	s.Record(ev)
	return nil
}
