package main

import (
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"hookScope/internal/config"
	"hookScope/internal/normalize"
)

func main() {
	root := &cobra.Command{
		Use:          "hookscope",
		Short:        "Stacks chainhook ingestion, analytics and whale alerts",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return config.LoadDotEnv()
		},
	}

	root.PersistentFlags().String("config", "", "config file path")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook, query and WebSocket server",
		RunE:  runServe,
	}

	serveCmd.Flags().String("listen", ":8080", "HTTP listen address")
	serveCmd.Flags().String("webhook-secret", "", "shared Bearer secret for webhook requests")
	serveCmd.Flags().Int("history-limit", 10000, "events kept per kind")
	serveCmd.Flags().Duration("sweep-interval", time.Hour, "retention sweep interval")
	serveCmd.Flags().Int("alert-feed-size", 100, "recent whale alerts kept in memory")
	serveCmd.Flags().String("stx-whale-threshold", "100000", "whale threshold in whole STX")
	serveCmd.Flags().String("usd-whale-threshold", "50000", "whale threshold in USD")
	serveCmd.Flags().String("raw-whale-threshold", "1000000000000", "whale threshold in smallest units when no price is known")
	serveCmd.Flags().String("token-prices", "", "token USD prices (comma-separated symbol=price)")
	serveCmd.Flags().String("token-decimals", "", "token decimals overrides (comma-separated contract=decimals)")
	serveCmd.Flags().String("dex-names", "", "exchange name overrides (comma-separated contract=name)")
	serveCmd.Flags().Bool("alert-batch", false, "queue alerts and deliver them in batches")
	serveCmd.Flags().Duration("alert-flush-interval", 5*time.Second, "batch flush interval")
	serveCmd.Flags().Int("alert-batch-size", 10, "alerts per batch flush")
	serveCmd.Flags().Duration("delivery-timeout", 10*time.Second, "per-delivery notification timeout")
	serveCmd.Flags().String("telegram-bot-token", "", "Telegram bot token")
	serveCmd.Flags().String("smtp-addr", "", "SMTP server host:port")
	serveCmd.Flags().String("smtp-from", "", "email sender address")
	serveCmd.Flags().String("archive-jsonl", "", "optional JSONL archive of normalized events")
	serveCmd.Flags().String("pg-dsn", "", "optional Postgres DSN for the event archive")
	serveCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(serveCmd)

	replayCmd := &cobra.Command{
		Use:   "replay",
		Short: "Normalize recorded chainhook payloads into an event archive",
		RunE:  runReplay,
	}

	replayCmd.Flags().String("in", "", "input JSONL of chainhook payloads")
	replayCmd.Flags().String("kind", "swap", "batch kind (swap, liquidity, ft-transfer, stx-transfer, nft-transfer)")
	replayCmd.Flags().String("out", "./data/events.jsonl", "output events JSONL")
	replayCmd.Flags().String("errors", "./data/parse_errors.jsonl", "parse errors JSONL")
	replayCmd.Flags().String("pg-dsn", "", "optional Postgres DSN")
	replayCmd.Flags().String("checkpoint", "", "optional checkpoint file; blocks at or below it are skipped")
	replayCmd.Flags().String("token-prices", "", "token USD prices (comma-separated symbol=price)")
	replayCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(replayCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func newTokenRegistry(prices map[string]decimal.Decimal, decimals map[string]int32) *normalize.TokenRegistry {
	tokens := normalize.NewTokenRegistry()
	for key, price := range prices {
		tokens.SetPrice(key, price)
	}
	for contract, d := range decimals {
		tokens.SetDecimals(contract, d)
	}
	return tokens
}
