package alerts

import (
	"sync"

	"hookScope/internal/model"
)

const defaultFeedSize = 100

// Feed keeps the most recent alerts in a fixed-size ring.
type Feed struct {
	mu    sync.RWMutex
	items []model.WhaleAlert
	next  int
	full  bool
}

func NewFeed(size int) *Feed {
	if size <= 0 {
		size = defaultFeedSize
	}
	return &Feed{items: make([]model.WhaleAlert, size)}
}

// Add stores alert, overwriting the oldest entry when full.
func (f *Feed) Add(alert model.WhaleAlert) {
	f.mu.Lock()
	f.items[f.next] = alert
	f.next = (f.next + 1) % len(f.items)
	if f.next == 0 {
		f.full = true
	}
	f.mu.Unlock()
}

// Len returns the number of stored alerts.
func (f *Feed) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.full {
		return len(f.items)
	}
	return f.next
}

// Recent returns up to limit alerts, newest first. limit <= 0 returns all.
func (f *Feed) Recent(limit int) []model.WhaleAlert {
	f.mu.RLock()
	defer f.mu.RUnlock()

	n := f.next
	if f.full {
		n = len(f.items)
	}
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]model.WhaleAlert, 0, n)
	idx := f.next
	for i := 0; i < n; i++ {
		idx = (idx - 1 + len(f.items)) % len(f.items)
		out = append(out, f.items[idx])
	}
	return out
}
