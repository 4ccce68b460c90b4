// Package alerts builds whale alerts and delivers them to owner subscriptions.
package alerts

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hookScope/internal/metrics"
	"hookScope/internal/model"
)

const (
	defaultDeliveryTimeout = 10 * time.Second
	defaultFlushInterval   = 5 * time.Second
	defaultBatchSize       = 10
)

// Sender delivers an alert over one channel.
type Sender interface {
	Send(ctx context.Context, sub Subscription, alert model.WhaleAlert) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, sub Subscription, alert model.WhaleAlert) error

func (f SenderFunc) Send(ctx context.Context, sub Subscription, alert model.WhaleAlert) error {
	return f(ctx, sub, alert)
}

// DispatcherConfig controls delivery.
type DispatcherConfig struct {
	Senders         map[Channel]Sender
	DeliveryTimeout time.Duration

	// Batch queues alerts and flushes them every FlushInterval, BatchSize at a time.
	Batch         bool
	FlushInterval time.Duration
	BatchSize     int

	Now     func() time.Time
	Metrics *metrics.Metrics
}

// Dispatcher owns notification subscriptions and fans alerts out to them.
type Dispatcher struct {
	cfg    DispatcherConfig
	logger *zap.Logger

	mu    sync.RWMutex
	subs  map[string]*Subscription
	order []string

	queueMu sync.Mutex
	queue   []model.WhaleAlert

	wg sync.WaitGroup
}

func NewDispatcher(cfg DispatcherConfig, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DeliveryTimeout <= 0 {
		cfg.DeliveryTimeout = defaultDeliveryTimeout
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = defaultFlushInterval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Senders == nil {
		cfg.Senders = map[Channel]Sender{}
	}
	return &Dispatcher{
		cfg:    cfg,
		logger: logger,
		subs:   make(map[string]*Subscription),
	}
}

// CreateSubscription registers an active subscription after checking the channel config.
func (d *Dispatcher) CreateSubscription(owner string, channel Channel, config map[string]string, filters Filters) (Subscription, error) {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return Subscription{}, ErrOwnerRequired
	}
	key, ok := requiredConfig[channel]
	if !ok {
		return Subscription{}, fmt.Errorf("%w: %s", ErrUnsupportedChannel, channel)
	}
	if strings.TrimSpace(config[key]) == "" {
		return Subscription{}, fmt.Errorf("%w: %s requires %s", ErrMissingConfig, channel, key)
	}

	sub := Subscription{
		ID:        uuid.NewString(),
		Owner:     owner,
		Channel:   channel,
		Config:    config,
		Filters:   filters,
		Active:    true,
		CreatedAt: d.cfg.Now().UTC(),
	}
	sub = sub.clone()

	d.mu.Lock()
	d.subs[sub.ID] = &sub
	d.order = append(d.order, sub.ID)
	d.mu.Unlock()

	d.logger.Info("subscription created",
		zap.String("id", sub.ID),
		zap.String("owner", owner),
		zap.String("channel", string(channel)),
	)
	return sub.clone(), nil
}

// ListByOwner returns the owner's subscriptions in creation order.
func (d *Dispatcher) ListByOwner(owner string) []Subscription {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]Subscription, 0)
	for _, id := range d.order {
		if sub := d.subs[id]; sub.Owner == owner {
			out = append(out, sub.clone())
		}
	}
	return out
}

// Delete removes a subscription.
func (d *Dispatcher) Delete(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.subs[id]; !ok {
		return ErrSubscriptionNotFound
	}
	delete(d.subs, id)
	for i, existing := range d.order {
		if existing == id {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	return nil
}

// Toggle sets the active flag and returns the updated subscription.
func (d *Dispatcher) Toggle(id string, active bool) (Subscription, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	sub, ok := d.subs[id]
	if !ok {
		return Subscription{}, ErrSubscriptionNotFound
	}
	sub.Active = active
	return sub.clone(), nil
}

// Notify delivers alert to every matching active subscription, or queues it in batch mode.
// It never blocks on delivery.
func (d *Dispatcher) Notify(ctx context.Context, alert model.WhaleAlert) {
	if d.cfg.Batch {
		d.queueMu.Lock()
		d.queue = append(d.queue, alert)
		n := len(d.queue)
		d.queueMu.Unlock()
		d.cfg.Metrics.QueueLength(n)
		return
	}
	d.dispatch(ctx, []model.WhaleAlert{alert})
}

// Run flushes the batch queue on every interval until ctx is cancelled, then drains it.
func (d *Dispatcher) Run(ctx context.Context) error {
	if !d.cfg.Batch {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(d.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.drain(context.WithoutCancel(ctx))
			return nil
		case <-ticker.C:
			d.flush(ctx)
		}
	}
}

// Wait blocks until in-flight deliveries finish.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) drain(ctx context.Context) {
	for {
		if d.flush(ctx) == 0 {
			return
		}
	}
}

// flush dispatches up to BatchSize queued alerts in FIFO order.
func (d *Dispatcher) flush(ctx context.Context) int {
	d.queueMu.Lock()
	n := len(d.queue)
	if n > d.cfg.BatchSize {
		n = d.cfg.BatchSize
	}
	batch := append([]model.WhaleAlert(nil), d.queue[:n]...)
	d.queue = d.queue[n:]
	remaining := len(d.queue)
	d.queueMu.Unlock()

	d.cfg.Metrics.QueueLength(remaining)
	if n > 0 {
		d.dispatch(ctx, batch)
	}
	return n
}

// dispatch starts one goroutine per matching subscription. Each goroutine sends its
// alerts in batch order; one failure never affects another subscription.
func (d *Dispatcher) dispatch(ctx context.Context, batch []model.WhaleAlert) {
	type delivery struct {
		sub    Subscription
		alerts []model.WhaleAlert
	}

	d.mu.RLock()
	deliveries := make([]delivery, 0, len(d.order))
	for _, id := range d.order {
		sub := d.subs[id]
		if !sub.Active {
			continue
		}
		var matched []model.WhaleAlert
		for _, alert := range batch {
			if sub.Filters.Match(alert) {
				matched = append(matched, alert)
			}
		}
		if len(matched) > 0 {
			deliveries = append(deliveries, delivery{sub: sub.clone(), alerts: matched})
		}
	}
	d.mu.RUnlock()

	base := context.WithoutCancel(ctx)
	for _, dl := range deliveries {
		d.wg.Add(1)
		go func(dl delivery) {
			defer d.wg.Done()
			for _, alert := range dl.alerts {
				d.deliver(base, dl.sub, alert)
			}
		}(dl)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, sub Subscription, alert model.WhaleAlert) {
	sender, ok := d.cfg.Senders[sub.Channel]
	if !ok {
		err := fmt.Errorf("%w: no sender for %s", ErrUnsupportedChannel, sub.Channel)
		d.cfg.Metrics.AlertDelivered(string(sub.Channel), err)
		d.logger.Warn("delivery failed", zap.String("subscription", sub.ID), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(ctx, d.cfg.DeliveryTimeout)
	defer cancel()

	err := sender.Send(ctx, sub, alert)
	d.cfg.Metrics.AlertDelivered(string(sub.Channel), err)
	if err != nil {
		d.logger.Warn("delivery failed",
			zap.String("subscription", sub.ID),
			zap.String("channel", string(sub.Channel)),
			zap.String("alert", alert.ID),
			zap.Error(err),
		)
		return
	}
	d.logger.Debug("alert delivered",
		zap.String("subscription", sub.ID),
		zap.String("channel", string(sub.Channel)),
		zap.String("alert", alert.ID),
	)
}
