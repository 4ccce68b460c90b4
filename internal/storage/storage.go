package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"hookScope/internal/model"
)

// EventSink archives normalized events.
type EventSink interface {
	PutEvents(ctx context.Context, events []model.Event) error
}

// Record is the archived form of one event.
type Record struct {
	Key         string          `json:"key"`
	Kind        model.EventKind `json:"kind"`
	TxID        string          `json:"txId"`
	EventIndex  int             `json:"eventIndex"`
	BlockHeight uint64          `json:"blockHeight"`
	BlockHash   string          `json:"blockHash"`
	Timestamp   int64           `json:"timestamp"`
	Sender      string          `json:"sender"`
	IsWhale     bool            `json:"isWhale"`
	Data        json.RawMessage `json:"data"`
}

// NewRecord flattens ev into an archive record.
func NewRecord(ev model.Event) (Record, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return Record{}, fmt.Errorf("marshal event: %w", err)
	}
	meta := ev.Meta()
	return Record{
		Key:         meta.Key(),
		Kind:        ev.Kind(),
		TxID:        meta.TxID,
		EventIndex:  meta.EventIndex,
		BlockHeight: meta.BlockHeight,
		BlockHash:   meta.BlockHash,
		Timestamp:   meta.Timestamp,
		Sender:      meta.Sender,
		IsWhale:     meta.IsWhale,
		Data:        data,
	}, nil
}

// MultiSink writes to every sink and joins their errors.
type MultiSink []EventSink

func (m MultiSink) PutEvents(ctx context.Context, events []model.Event) error {
	var errs []error
	for _, sink := range m {
		if err := sink.PutEvents(ctx, events); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
