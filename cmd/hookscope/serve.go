package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"hookScope/internal/alerts"
	"hookScope/internal/analytics"
	"hookScope/internal/broadcast"
	"hookScope/internal/config"
	"hookScope/internal/metrics"
	"hookScope/internal/normalize"
	"hookScope/internal/pipeline"
	"hookScope/internal/ratelimit"
	"hookScope/internal/server"
	"hookScope/internal/storage"
	"hookScope/internal/storage/postgres"
)

func runServe(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadServe(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New(cfg.MetricsNamespace)

	archive, closeArchive, err := openArchive(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeArchive()

	p := pipeline.New(pipeline.Config{
		Normalize: normalize.Config{
			Thresholds: normalize.Thresholds{
				STX: cfg.STXWhaleThreshold,
				USD: cfg.USDWhaleThreshold,
				Raw: cfg.RawWhaleThreshold,
			},
			ExchangeNames: cfg.DexNames,
			Tokens:        newTokenRegistry(cfg.TokenPrices, cfg.TokenDecimals),
		},
		Analytics: analytics.Config{
			HistoryLimit:  cfg.HistoryLimit,
			SweepInterval: cfg.SweepInterval,
		},
		Broadcast: broadcast.Config{WriteTimeout: cfg.WSWriteTimeout},
		Dispatcher: alerts.DispatcherConfig{
			Senders:         newSenders(cfg),
			DeliveryTimeout: cfg.DeliveryTimeout,
			Batch:           cfg.AlertBatch,
			FlushInterval:   cfg.AlertFlushInterval,
			BatchSize:       cfg.AlertBatchSize,
		},
		FeedSize: cfg.FeedSize,
		Archive:  archive,
		Metrics:  m,
	}, logger)

	limiter := ratelimit.New(ratelimit.Config{Metrics: m}, logger.Named("ratelimit"))
	srv := server.New(server.Config{
		Addr:          cfg.Listen,
		WebhookSecret: cfg.WebhookSecret,
		Metrics:       m,
	}, p, limiter, logger.Named("http"))

	logger.Info("serve start",
		zap.String("listen", cfg.Listen),
		zap.Bool("webhook_auth", cfg.WebhookSecret != ""),
		zap.Int("history_limit", cfg.HistoryLimit),
		zap.Bool("alert_batch", cfg.AlertBatch),
		zap.Bool("archive", archive != nil),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error { return p.Analytics.Run(gctx) })
	g.Go(func() error { return p.Dispatcher.Run(gctx) })
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http: %w", err)
		}
		p.Dispatcher.Wait()
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("serve stopped")
	return nil
}

func newSenders(cfg config.ServeConfig) map[alerts.Channel]alerts.Sender {
	client := &http.Client{Timeout: cfg.DeliveryTimeout}
	senders := map[alerts.Channel]alerts.Sender{
		alerts.ChannelDiscord: &alerts.DiscordSender{Client: client},
		alerts.ChannelWebhook: &alerts.WebhookSender{Client: client},
	}
	if cfg.TelegramBotToken != "" {
		senders[alerts.ChannelTelegram] = &alerts.TelegramSender{
			BotToken: cfg.TelegramBotToken,
			BaseURL:  cfg.TelegramAPI,
			Client:   client,
		}
	}
	if cfg.SMTPAddr != "" {
		senders[alerts.ChannelEmail] = &alerts.EmailSender{
			Addr:     cfg.SMTPAddr,
			From:     cfg.SMTPFrom,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
		}
	}
	return senders
}

// openArchive builds the optional event archive. It returns a nil sink when nothing is configured.
func openArchive(ctx context.Context, cfg config.ServeConfig, logger *zap.Logger) (storage.EventSink, func(), error) {
	var sinks storage.MultiSink
	closers := []func(){}

	if cfg.ArchiveJSONL != "" {
		sinks = append(sinks, storage.NewJsonlStorage(cfg.ArchiveJSONL))
	}
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := store.Migrate(ctx); err != nil {
			store.Close()
			return nil, nil, fmt.Errorf("migrate postgres: %w", err)
		}
		closers = append(closers, store.Close)
		sinks = append(sinks, &storage.RetrySink{
			Sink:       store,
			MaxRetries: cfg.ArchiveRetries,
			BaseDelay:  cfg.ArchiveBackoff,
			Logger:     logger.Named("archive"),
		})
	}

	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}
	switch len(sinks) {
	case 0:
		return nil, closeAll, nil
	case 1:
		return sinks[0], closeAll, nil
	default:
		return sinks, closeAll, nil
	}
}
