package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
)

// ServeConfig holds configuration for the serve command.
type ServeConfig struct {
	Listen           string
	LogLevel         string
	WebhookSecret    string
	ShutdownTimeout  time.Duration
	MetricsNamespace string

	HistoryLimit  int
	SweepInterval time.Duration
	FeedSize      int

	STXWhaleThreshold decimal.Decimal
	USDWhaleThreshold decimal.Decimal
	RawWhaleThreshold decimal.Decimal
	TokenPrices       map[string]decimal.Decimal
	TokenDecimals     map[string]int32
	DexNames          map[string]string

	WSWriteTimeout time.Duration

	AlertBatch         bool
	AlertFlushInterval time.Duration
	AlertBatchSize     int
	DeliveryTimeout    time.Duration
	TelegramBotToken   string
	TelegramAPI        string
	SMTPAddr           string
	SMTPFrom           string
	SMTPUser           string
	SMTPPassword       string

	ArchiveJSONL   string
	PGDSN          string
	ArchiveRetries int
	ArchiveBackoff time.Duration
}

// LoadServe merges config file, environment variables, and flags into ServeConfig.
func LoadServe(cfgFile string, flags *pflag.FlagSet) (ServeConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"listen":               ":8080",
		"log-level":            "info",
		"shutdown-timeout":     10 * time.Second,
		"metrics-namespace":    "hookscope",
		"history-limit":        10000,
		"sweep-interval":       time.Hour,
		"alert-feed-size":      100,
		"stx-whale-threshold":  "100000",
		"usd-whale-threshold":  "50000",
		"raw-whale-threshold":  "1000000000000",
		"ws-write-timeout":     10 * time.Second,
		"alert-batch":          false,
		"alert-flush-interval": 5 * time.Second,
		"alert-batch-size":     10,
		"delivery-timeout":     10 * time.Second,
		"archive-retries":      3,
		"archive-backoff":      200 * time.Millisecond,
	})
	if err != nil {
		return ServeConfig{}, err
	}

	cfg := ServeConfig{
		Listen:             v.GetString("listen"),
		LogLevel:           v.GetString("log-level"),
		WebhookSecret:      v.GetString("webhook-secret"),
		ShutdownTimeout:    v.GetDuration("shutdown-timeout"),
		MetricsNamespace:   v.GetString("metrics-namespace"),
		HistoryLimit:       v.GetInt("history-limit"),
		SweepInterval:      v.GetDuration("sweep-interval"),
		FeedSize:           v.GetInt("alert-feed-size"),
		DexNames:           getStringMap(v, "dex-names"),
		WSWriteTimeout:     v.GetDuration("ws-write-timeout"),
		AlertBatch:         v.GetBool("alert-batch"),
		AlertFlushInterval: v.GetDuration("alert-flush-interval"),
		AlertBatchSize:     v.GetInt("alert-batch-size"),
		DeliveryTimeout:    v.GetDuration("delivery-timeout"),
		TelegramBotToken:   v.GetString("telegram-bot-token"),
		TelegramAPI:        v.GetString("telegram-api"),
		SMTPAddr:           v.GetString("smtp-addr"),
		SMTPFrom:           v.GetString("smtp-from"),
		SMTPUser:           v.GetString("smtp-user"),
		SMTPPassword:       v.GetString("smtp-password"),
		ArchiveJSONL:       v.GetString("archive-jsonl"),
		PGDSN:              v.GetString("pg-dsn"),
		ArchiveRetries:     v.GetInt("archive-retries"),
		ArchiveBackoff:     v.GetDuration("archive-backoff"),
	}

	if cfg.STXWhaleThreshold, err = getDecimal(v, "stx-whale-threshold"); err != nil {
		return ServeConfig{}, err
	}
	if cfg.USDWhaleThreshold, err = getDecimal(v, "usd-whale-threshold"); err != nil {
		return ServeConfig{}, err
	}
	if cfg.RawWhaleThreshold, err = getDecimal(v, "raw-whale-threshold"); err != nil {
		return ServeConfig{}, err
	}
	if cfg.TokenPrices, err = getDecimalMap(v, "token-prices"); err != nil {
		return ServeConfig{}, err
	}
	if cfg.TokenDecimals, err = getInt32Map(v, "token-decimals"); err != nil {
		return ServeConfig{}, err
	}

	return cfg, nil
}

// Validate rejects values the server cannot run with.
func (c ServeConfig) Validate() error {
	if strings.TrimSpace(c.Listen) == "" {
		return fmt.Errorf("listen address is required")
	}
	intervals := map[string]time.Duration{
		"sweep-interval":       c.SweepInterval,
		"alert-flush-interval": c.AlertFlushInterval,
		"delivery-timeout":     c.DeliveryTimeout,
		"ws-write-timeout":     c.WSWriteTimeout,
		"shutdown-timeout":     c.ShutdownTimeout,
	}
	for name, d := range intervals {
		if d <= 0 {
			return fmt.Errorf("%s must be > 0", name)
		}
	}
	thresholds := map[string]decimal.Decimal{
		"stx-whale-threshold": c.STXWhaleThreshold,
		"usd-whale-threshold": c.USDWhaleThreshold,
		"raw-whale-threshold": c.RawWhaleThreshold,
	}
	for name, d := range thresholds {
		if d.IsNegative() {
			return fmt.Errorf("%s must be >= 0", name)
		}
	}
	if c.HistoryLimit <= 0 {
		return fmt.Errorf("history-limit must be > 0")
	}
	if c.AlertBatchSize <= 0 {
		return fmt.Errorf("alert-batch-size must be > 0")
	}
	return nil
}
