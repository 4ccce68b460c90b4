package ratelimit

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hookScope/internal/metrics"
)

const (
	keyPrefix = "hs_"
	dayLayout = "2006-01-02"
)

var (
	ErrInvalidKey    = errors.New("invalid key")
	ErrExpiredKey    = errors.New("expired key")
	ErrQuotaExceeded = errors.New("quota exceeded")
	ErrKeyExists     = errors.New("owner already holds a key")
	ErrUnknownTier   = errors.New("unknown tier")
	ErrOwnerRequired = errors.New("owner is required")
)

// KeyRecord is the stored state of one API key.
type KeyRecord struct {
	Key            string    `json:"key"`
	Owner          string    `json:"owner"`
	Tier           Tier      `json:"tier"`
	CreatedAt      time.Time `json:"createdAt"`
	ExpiresAt      time.Time `json:"expiresAt"`
	RequestsToday  int       `json:"requestsToday"`
	LastRequestDay string    `json:"lastRequestDay"`
}

// Validation is the outcome of a Validate call. It is filled even on rejection when the key is known.
type Validation struct {
	Valid     bool      `json:"valid"`
	Tier      Tier      `json:"tier,omitempty"`
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}

// KeyInfo reports usage without counting a request.
type KeyInfo struct {
	Owner     string    `json:"owner"`
	Tier      Tier      `json:"tier"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	UsedToday int       `json:"usedToday"`
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	Expired   bool      `json:"expired"`
}

// Config controls the limiter.
type Config struct {
	Tiers   map[Tier]TierLimits
	Now     func() time.Time
	Metrics *metrics.Metrics
}

// Limiter tracks per-key daily quota consumption.
type Limiter struct {
	mu      sync.Mutex
	tiers   map[Tier]TierLimits
	keys    map[string]*KeyRecord
	owners  map[string]string
	now     func() time.Time
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Limiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	tiers := cfg.Tiers
	if len(tiers) == 0 {
		tiers = DefaultTiers()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Limiter{
		tiers:   tiers,
		keys:    make(map[string]*KeyRecord),
		owners:  make(map[string]string),
		now:     now,
		metrics: cfg.Metrics,
		logger:  logger,
	}
}

// Limits returns the limits for a tier.
func (l *Limiter) Limits(tier Tier) (TierLimits, bool) {
	limits, ok := l.tiers[tier]
	return limits, ok
}

// Generate issues a key. An owner may hold only one key at a time.
func (l *Limiter) Generate(owner string, tier Tier) (KeyRecord, error) {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return KeyRecord{}, ErrOwnerRequired
	}
	limits, ok := l.tiers[tier]
	if !ok {
		return KeyRecord{}, fmt.Errorf("%w: %s", ErrUnknownTier, tier)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.owners[owner]; exists {
		return KeyRecord{}, ErrKeyExists
	}

	now := l.now().UTC()
	rec := &KeyRecord{
		Key:       newKey(),
		Owner:     owner,
		Tier:      tier,
		CreatedAt: now,
		ExpiresAt: now.Add(limits.Lifetime),
	}
	l.keys[rec.Key] = rec
	l.owners[owner] = rec.Key

	l.logger.Info("api key generated", zap.String("owner", owner), zap.String("tier", string(tier)))
	return *rec, nil
}

// Validate counts one request against the key's daily quota.
func (l *Limiter) Validate(key string) (Validation, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.keys[key]
	if !ok {
		l.metrics.KeyValidated("invalid")
		return Validation{}, ErrInvalidKey
	}

	limits := l.tiers[rec.Tier]
	res := Validation{Tier: rec.Tier, Limit: limits.DailyQuota, ExpiresAt: rec.ExpiresAt}

	now := l.now().UTC()
	if now.After(rec.ExpiresAt) {
		l.metrics.KeyValidated("expired")
		return res, ErrExpiredKey
	}

	day := now.Format(dayLayout)
	if rec.LastRequestDay != day {
		rec.RequestsToday = 0
		rec.LastRequestDay = day
	}

	if rec.RequestsToday >= limits.DailyQuota {
		l.metrics.KeyValidated("quota_exceeded")
		return res, ErrQuotaExceeded
	}

	rec.RequestsToday++
	res.Valid = true
	res.Remaining = limits.DailyQuota - rec.RequestsToday
	l.metrics.KeyValidated("ok")
	return res, nil
}

// Info returns usage for a key without counting a request.
func (l *Limiter) Info(key string) (KeyInfo, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.keys[key]
	if !ok {
		return KeyInfo{}, ErrInvalidKey
	}

	limits := l.tiers[rec.Tier]
	now := l.now().UTC()
	used := rec.RequestsToday
	if rec.LastRequestDay != now.Format(dayLayout) {
		used = 0
	}
	remaining := limits.DailyQuota - used
	if remaining < 0 {
		remaining = 0
	}

	return KeyInfo{
		Owner:     rec.Owner,
		Tier:      rec.Tier,
		CreatedAt: rec.CreatedAt,
		ExpiresAt: rec.ExpiresAt,
		UsedToday: used,
		Limit:     limits.DailyQuota,
		Remaining: remaining,
		Expired:   now.After(rec.ExpiresAt),
	}, nil
}

// Revoke deletes a key and frees its owner.
func (l *Limiter) Revoke(key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.keys[key]
	if !ok {
		return ErrInvalidKey
	}
	delete(l.keys, key)
	delete(l.owners, rec.Owner)

	l.logger.Info("api key revoked", zap.String("owner", rec.Owner))
	return nil
}

func newKey() string {
	return keyPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}
