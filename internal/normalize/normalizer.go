package normalize

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"hookScope/internal/metrics"
	"hookScope/internal/model"
)

// BatchKind selects which receipt shapes a webhook batch is parsed for.
type BatchKind string

const (
	BatchSwap        BatchKind = "swap"
	BatchLiquidity   BatchKind = "liquidity"
	BatchFTTransfer  BatchKind = "ft-transfer"
	BatchSTXTransfer BatchKind = "stx-transfer"
	BatchNFTTransfer BatchKind = "nft-transfer"
)

var errSkipped = errors.New("transaction not successful")

// Observer receives every normalized event.
type Observer interface {
	Observe(ctx context.Context, ev model.Event) error
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, ev model.Event) error

func (f ObserverFunc) Observe(ctx context.Context, ev model.Event) error {
	return f(ctx, ev)
}

// Observers are notified in field order. Alert is only called for whale events. Nil entries are skipped.
type Observers struct {
	Analytics Observer
	Broadcast Observer
	Alert     Observer
	Archive   Observer
}

// Config controls normalization.
type Config struct {
	Thresholds    Thresholds
	ExchangeNames map[string]string
	Tokens        *TokenRegistry
	Observers     Observers
	Metrics       *metrics.Metrics
}

// Normalizer turns chainhook batches into domain events.
type Normalizer struct {
	exchanges  ExchangeNames
	tokens     *TokenRegistry
	classifier Classifier
	observers  Observers
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	tokens := cfg.Tokens
	if tokens == nil {
		tokens = NewTokenRegistry()
	}
	return &Normalizer{
		exchanges:  NewExchangeNames(cfg.ExchangeNames),
		tokens:     tokens,
		classifier: NewClassifier(cfg.Thresholds),
		observers:  cfg.Observers,
		metrics:    cfg.Metrics,
		logger:     logger,
	}
}

// Parse normalizes every successful transaction of the batch in block order. Malformed
// transactions are returned as ParseErrors and never stop the batch. Observers are notified
// for each event before Parse returns.
func (n *Normalizer) Parse(ctx context.Context, kind BatchKind, payload model.Payload) ([]model.Event, []model.ParseError) {
	var events []model.Event
	var parseErrors []model.ParseError

	for _, block := range payload.Apply {
		for _, tx := range block.Transactions {
			txEvents, err := n.parseTransaction(kind, block, tx)
			if errors.Is(err, errSkipped) {
				continue
			}
			if err != nil {
				parseErrors = append(parseErrors, model.ParseError{
					Kind:        string(kind),
					BlockHeight: block.BlockIdentifier.Index,
					BlockHash:   block.BlockIdentifier.Hash,
					TxID:        tx.TransactionIdentifier.Hash,
					Error:       err.Error(),
				})
				n.metrics.ParseError(string(kind))
				n.logger.Warn("skip malformed transaction",
					zap.String("kind", string(kind)),
					zap.Uint64("block", block.BlockIdentifier.Index),
					zap.String("tx", tx.TransactionIdentifier.Hash),
					zap.Error(err),
				)
				continue
			}

			for _, ev := range txEvents {
				n.metrics.EventProcessed(string(ev.Kind()))
				n.notify(ctx, ev)
				events = append(events, ev)
			}
		}
	}

	return events, parseErrors
}

func (n *Normalizer) parseTransaction(kind BatchKind, block model.Block, tx model.Transaction) ([]model.Event, error) {
	txID, err := canonicalTxID(tx.TransactionIdentifier.Hash)
	if err != nil {
		return nil, err
	}
	if tx.Metadata == nil {
		return nil, fmt.Errorf("missing metadata")
	}
	if !tx.Metadata.Success {
		return nil, errSkipped
	}
	if tx.Metadata.Receipt == nil {
		return nil, fmt.Errorf("missing receipt")
	}

	base := model.EventMeta{
		TxID:        txID,
		BlockHeight: block.BlockIdentifier.Index,
		BlockHash:   canonicalBlockHash(block.BlockIdentifier.Hash),
		Timestamp:   block.Timestamp,
		Sender:      tx.Metadata.Sender,
	}

	switch kind {
	case BatchSwap:
		ev, err := n.parseSwap(base, tx.Metadata)
		if err != nil {
			return nil, err
		}
		return []model.Event{ev}, nil
	case BatchLiquidity:
		ev, err := n.parseLiquidity(base, tx.Metadata)
		if err != nil {
			return nil, err
		}
		return []model.Event{ev}, nil
	case BatchSTXTransfer:
		return n.parseTransfers(base, tx.Metadata.Receipt, model.AssetSTX)
	case BatchFTTransfer:
		return n.parseTransfers(base, tx.Metadata.Receipt, model.AssetFT)
	case BatchNFTTransfer:
		return n.parseTransfers(base, tx.Metadata.Receipt, model.AssetNFT)
	default:
		return nil, fmt.Errorf("unsupported batch kind %q", kind)
	}
}

func (n *Normalizer) notify(ctx context.Context, ev model.Event) {
	n.observe(ctx, "analytics", n.observers.Analytics, ev)
	n.observe(ctx, "broadcast", n.observers.Broadcast, ev)
	if ev.Meta().IsWhale {
		n.observe(ctx, "alert", n.observers.Alert, ev)
	}
	n.observe(ctx, "archive", n.observers.Archive, ev)
}

func (n *Normalizer) observe(ctx context.Context, name string, obs Observer, ev model.Event) {
	if obs == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			n.metrics.ObserverFailed(name)
			n.logger.Error("observer panic",
				zap.String("observer", name),
				zap.String("tx", ev.Meta().TxID),
				zap.Any("panic", r),
			)
		}
	}()

	if err := obs.Observe(ctx, ev); err != nil {
		n.metrics.ObserverFailed(name)
		n.logger.Warn("observer failed",
			zap.String("observer", name),
			zap.String("tx", ev.Meta().TxID),
			zap.Error(err),
		)
	}
}
