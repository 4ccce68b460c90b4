package storage

import (
	"context"
	"time"

	"go.uber.org/zap"

	"hookScope/internal/model"
)

// RetrySink retries a failing sink with exponential backoff.
type RetrySink struct {
	Sink       EventSink
	MaxRetries int
	BaseDelay  time.Duration
	Logger     *zap.Logger
}

func (r *RetrySink) PutEvents(ctx context.Context, events []model.Event) error {
	attempt := 0
	return withRetry(ctx, r.MaxRetries, r.BaseDelay, func(ctx context.Context) error {
		attempt++
		err := r.Sink.PutEvents(ctx, events)
		if err != nil && r.Logger != nil {
			r.Logger.Warn("archive write failed", zap.Int("attempt", attempt), zap.Int("events", len(events)), zap.Error(err))
		}
		return err
	})
}

func withRetry(ctx context.Context, maxRetries int, baseDelay time.Duration, fn func(context.Context) error) error {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = 100 * time.Millisecond
	}

	delay := baseDelay
	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= maxRetries {
			return err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay *= 2
	}
}
