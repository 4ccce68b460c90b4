// Package pipeline wires the normalizer to its downstream consumers.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"hookScope/internal/alerts"
	"hookScope/internal/analytics"
	"hookScope/internal/broadcast"
	"hookScope/internal/metrics"
	"hookScope/internal/model"
	"hookScope/internal/normalize"
	"hookScope/internal/storage"
)

// Config assembles the pipeline components. Observers in Normalize are replaced.
type Config struct {
	Normalize      normalize.Config
	Analytics      analytics.Config
	Broadcast      broadcast.Config
	Dispatcher     alerts.DispatcherConfig
	FeedSize       int
	WalletCapacity int
	// Archive is optional.
	Archive storage.EventSink
	Now     func() time.Time
	Metrics *metrics.Metrics
}

// Pipeline owns every in-memory store and the normalizer feeding them.
type Pipeline struct {
	Normalizer *normalize.Normalizer
	Analytics  *analytics.Store
	Hub        *broadcast.Hub
	Dispatcher *alerts.Dispatcher
	Feed       *alerts.Feed
	Wallets    *alerts.WalletTracker

	classifier normalize.Classifier
	archive    storage.EventSink
	now        func() time.Time
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	cfg.Analytics.Metrics = cfg.Metrics
	cfg.Broadcast.Metrics = cfg.Metrics
	cfg.Dispatcher.Metrics = cfg.Metrics
	cfg.Normalize.Metrics = cfg.Metrics

	p := &Pipeline{
		Analytics:  analytics.New(cfg.Analytics, logger.Named("analytics")),
		Hub:        broadcast.NewHub(cfg.Broadcast, logger.Named("broadcast")),
		Dispatcher: alerts.NewDispatcher(cfg.Dispatcher, logger.Named("alerts")),
		Feed:       alerts.NewFeed(cfg.FeedSize),
		Wallets:    alerts.NewWalletTracker(cfg.WalletCapacity),
		classifier: normalize.NewClassifier(cfg.Normalize.Thresholds),
		archive:    cfg.Archive,
		now:        cfg.Now,
		metrics:    cfg.Metrics,
		logger:     logger,
	}

	cfg.Normalize.Observers = normalize.Observers{
		Analytics: normalize.ObserverFunc(p.observeAnalytics),
		Broadcast: normalize.ObserverFunc(p.observeBroadcast),
		Alert:     normalize.ObserverFunc(p.observeAlert),
	}
	if cfg.Archive != nil {
		cfg.Normalize.Observers.Archive = normalize.ObserverFunc(p.observeArchive)
	}
	p.Normalizer = normalize.New(cfg.Normalize, logger.Named("normalize"))
	return p
}

// Ingest normalizes one webhook batch and notifies every consumer before returning.
func (p *Pipeline) Ingest(ctx context.Context, kind normalize.BatchKind, payload model.Payload) ([]model.Event, []model.ParseError) {
	return p.Normalizer.Parse(ctx, kind, payload)
}

func (p *Pipeline) observeAnalytics(_ context.Context, ev model.Event) error {
	p.Analytics.Record(ev)
	p.Wallets.Observe(ev)
	return nil
}

func (p *Pipeline) observeBroadcast(_ context.Context, ev model.Event) error {
	p.Hub.Publish(ChannelFor(ev.Kind()), ev)
	return nil
}

func (p *Pipeline) observeAlert(ctx context.Context, ev model.Event) error {
	mag := p.classifier.Measure(ev)
	newWallet := ev.Kind() == model.KindTransfer && p.Wallets.IsNew(ev)
	alert := alerts.Build(ev, mag, newWallet, p.now())

	p.Feed.Add(alert)
	p.metrics.AlertRaised(string(alert.Type))
	p.Hub.Publish(broadcast.ChannelWhaleAlert, alert)
	p.Dispatcher.Notify(ctx, alert)

	p.logger.Info("whale alert",
		zap.String("id", alert.ID),
		zap.String("type", string(alert.Type)),
		zap.String("severity", string(alert.Severity)),
		zap.String("tx", ev.Meta().TxID),
	)
	return nil
}

func (p *Pipeline) observeArchive(ctx context.Context, ev model.Event) error {
	if err := p.archive.PutEvents(ctx, []model.Event{ev}); err != nil {
		return fmt.Errorf("archive event: %w", err)
	}
	return nil
}

// ChannelFor maps an event kind to its broadcast channel.
func ChannelFor(kind model.EventKind) string {
	switch kind {
	case model.KindSwap:
		return broadcast.ChannelSwap
	case model.KindLiquidity:
		return broadcast.ChannelLiquidity
	default:
		return broadcast.ChannelTransfer
	}
}
