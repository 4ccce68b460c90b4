package alerts

import (
	"sync"

	"hookScope/internal/model"
)

const defaultWalletCapacity = 100_000

// WalletTracker remembers the first event seen for each sender. The oldest senders are
// forgotten once capacity is reached.
type WalletTracker struct {
	mu       sync.Mutex
	first    map[string]string
	order    []string
	capacity int
}

func NewWalletTracker(capacity int) *WalletTracker {
	if capacity <= 0 {
		capacity = defaultWalletCapacity
	}
	return &WalletTracker{
		first:    make(map[string]string),
		capacity: capacity,
	}
}

// Observe records ev's sender if it was not known yet.
func (w *WalletTracker) Observe(ev model.Event) {
	meta := ev.Meta()
	if meta.Sender == "" {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.first[meta.Sender]; ok {
		return
	}
	if len(w.order) >= w.capacity {
		oldest := w.order[0]
		w.order = w.order[1:]
		delete(w.first, oldest)
	}
	w.first[meta.Sender] = meta.Key()
	w.order = append(w.order, meta.Sender)
}

// IsNew reports whether ev is the first event recorded for its sender.
func (w *WalletTracker) IsNew(ev model.Event) bool {
	meta := ev.Meta()
	if meta.Sender == "" {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	key, ok := w.first[meta.Sender]
	return !ok || key == meta.Key()
}
