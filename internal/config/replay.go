package config

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
)

// ReplayConfig holds configuration for the replay command.
type ReplayConfig struct {
	In         string
	Kind       string
	Out        string
	Errors     string
	PGDSN      string
	Checkpoint string
	LogLevel   string

	STXWhaleThreshold decimal.Decimal
	USDWhaleThreshold decimal.Decimal
	RawWhaleThreshold decimal.Decimal
	TokenPrices       map[string]decimal.Decimal
	TokenDecimals     map[string]int32
	DexNames          map[string]string
}

// LoadReplay merges config file, environment variables, and flags into ReplayConfig.
func LoadReplay(cfgFile string, flags *pflag.FlagSet) (ReplayConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"kind":                "swap",
		"out":                 "./data/events.jsonl",
		"errors":              "./data/parse_errors.jsonl",
		"log-level":           "info",
		"stx-whale-threshold": "100000",
		"usd-whale-threshold": "50000",
		"raw-whale-threshold": "1000000000000",
	})
	if err != nil {
		return ReplayConfig{}, err
	}

	cfg := ReplayConfig{
		In:         v.GetString("in"),
		Kind:       strings.TrimSpace(v.GetString("kind")),
		Out:        v.GetString("out"),
		Errors:     v.GetString("errors"),
		PGDSN:      v.GetString("pg-dsn"),
		Checkpoint: v.GetString("checkpoint"),
		LogLevel:   v.GetString("log-level"),
		DexNames:   getStringMap(v, "dex-names"),
	}

	if cfg.STXWhaleThreshold, err = getDecimal(v, "stx-whale-threshold"); err != nil {
		return ReplayConfig{}, err
	}
	if cfg.USDWhaleThreshold, err = getDecimal(v, "usd-whale-threshold"); err != nil {
		return ReplayConfig{}, err
	}
	if cfg.RawWhaleThreshold, err = getDecimal(v, "raw-whale-threshold"); err != nil {
		return ReplayConfig{}, err
	}
	if cfg.TokenPrices, err = getDecimalMap(v, "token-prices"); err != nil {
		return ReplayConfig{}, err
	}
	if cfg.TokenDecimals, err = getInt32Map(v, "token-decimals"); err != nil {
		return ReplayConfig{}, err
	}

	if cfg.In == "" {
		return ReplayConfig{}, fmt.Errorf("input path is required")
	}
	return cfg, nil
}
