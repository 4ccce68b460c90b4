package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"hookScope/internal/model"
)

// JsonlStorage appends archive records to a JSONL file.
type JsonlStorage struct {
	path string
	mu   sync.Mutex
}

func NewJsonlStorage(path string) *JsonlStorage {
	return &JsonlStorage{path: path}
}

// PutEvents appends a batch of events as JSON lines.
func (s *JsonlStorage) PutEvents(_ context.Context, events []model.Event) error {
	if len(events) == 0 {
		return nil
	}
	records := make([]Record, 0, len(events))
	for _, ev := range events {
		record, err := NewRecord(ev)
		if err != nil {
			return err
		}
		records = append(records, record)
	}
	return appendLines(s, records)
}

// PutParseErrors appends parse error records as JSON lines.
func (s *JsonlStorage) PutParseErrors(errs []model.ParseError) error {
	if len(errs) == 0 {
		return nil
	}
	return appendLines(s, errs)
}

func appendLines[T any](s *JsonlStorage, items []T) error {
	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, item := range items {
		line, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}
