package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hookScope/internal/config"
	"hookScope/internal/model"
	"hookScope/internal/normalize"
	"hookScope/internal/pipeline"
	"hookScope/internal/storage"
	"hookScope/internal/storage/postgres"
)

var batchKinds = map[string]normalize.BatchKind{
	string(normalize.BatchSwap):        normalize.BatchSwap,
	string(normalize.BatchLiquidity):   normalize.BatchLiquidity,
	string(normalize.BatchFTTransfer):  normalize.BatchFTTransfer,
	string(normalize.BatchSTXTransfer): normalize.BatchSTXTransfer,
	string(normalize.BatchNFTTransfer): normalize.BatchNFTTransfer,
}

func runReplay(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadReplay(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	kind, ok := batchKinds[cfg.Kind]
	if !ok {
		return fmt.Errorf("unknown batch kind: %s", cfg.Kind)
	}
	if cfg.Out == "" {
		return fmt.Errorf("output path is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sinks := storage.MultiSink{storage.NewJsonlStorage(cfg.Out)}
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		if err := store.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate postgres: %w", err)
		}
		sinks = append(sinks, store)
	}

	var errStore *storage.JsonlStorage
	if cfg.Errors != "" {
		errStore = storage.NewJsonlStorage(cfg.Errors)
	}

	checkpoint := storage.NewCheckpointStore(cfg.Checkpoint)
	cp, found, err := checkpoint.Load()
	if err != nil {
		return err
	}

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
		Archive: sinks,
	}, logger)

	inputFile, err := os.Open(cfg.In)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer inputFile.Close()

	logger.Info("replay start",
		zap.String("in", cfg.In),
		zap.String("kind", cfg.Kind),
		zap.String("out", cfg.Out),
		zap.String("errors", cfg.Errors),
		zap.Bool("resume", found),
		zap.Uint64("checkpoint", cp.LastBlockHeight),
	)

	scanner := bufio.NewScanner(inputFile)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 32*1024*1024)

	var lines, blocks, events, failed int
	lastHeight := cp.LastBlockHeight
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		lines++

		var payload model.Payload
		if err := json.Unmarshal(line, &payload); err != nil {
			failed++
			writeParseErrors(errStore, []model.ParseError{{Kind: cfg.Kind, Error: err.Error()}})
			continue
		}

		payload.Apply = pendingBlocks(payload.Apply, lastHeight, found)
		if len(payload.Apply) == 0 {
			continue
		}

		parsed, parseErrs := p.Ingest(ctx, kind, payload)
		blocks += len(payload.Apply)
		events += len(parsed)
		failed += len(parseErrs)
		writeParseErrors(errStore, parseErrs)

		for _, block := range payload.Apply {
			if block.BlockIdentifier.Index > lastHeight {
				lastHeight = block.BlockIdentifier.Index
			}
		}
		if err := checkpoint.Save(lastHeight); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan input: %w", err)
	}

	stats := p.Analytics.Stats()
	logger.Info("replay complete",
		zap.Int("lines", lines),
		zap.Int("blocks", blocks),
		zap.Int("events", events),
		zap.Int("failed", failed),
		zap.Int("whales", p.Feed.Len()),
		zap.Int("pools", stats.PoolCount),
		zap.Uint64("last_block", lastHeight),
	)
	return nil
}

// pendingBlocks drops blocks already covered by the checkpoint.
func pendingBlocks(blocks []model.Block, lastHeight uint64, resume bool) []model.Block {
	if !resume {
		return blocks
	}
	out := blocks[:0]
	for _, block := range blocks {
		if block.BlockIdentifier.Index > lastHeight {
			out = append(out, block)
		}
	}
	return out
}

func writeParseErrors(store *storage.JsonlStorage, errs []model.ParseError) {
	if store == nil || len(errs) == 0 {
		return
	}
	_ = store.PutParseErrors(errs)
}
