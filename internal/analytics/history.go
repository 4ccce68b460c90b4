package analytics

import (
	"strings"

	"hookScope/internal/model"
)

// Filter narrows History results. Zero fields match everything; set fields are ANDed.
// A field that does not apply to the queried kind is ignored.
type Filter struct {
	Exchange  string
	Token     string
	MinUSD    float64
	Address   string
	Pool      string
	Action    model.LiquidityAction
	WhaleOnly bool
}

// Page selects a slice of the filtered results. Limit <= 0 returns everything after Offset.
type Page struct {
	Offset int
	Limit  int
}

// History returns matching events of one kind, newest first, and the total before pagination.
func (s *Store) History(kind model.EventKind, filter Filter, page Page) ([]model.Event, int) {
	s.mu.RLock()
	history := s.events[kind]
	matched := make([]model.Event, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		if filter.match(history[i]) {
			matched = append(matched, history[i])
		}
	}
	s.mu.RUnlock()

	total := len(matched)
	offset := page.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return []model.Event{}, total
	}
	end := total
	if page.Limit > 0 && offset+page.Limit < end {
		end = offset + page.Limit
	}
	return matched[offset:end], total
}

func (f Filter) match(ev model.Event) bool {
	meta := ev.Meta()
	if f.WhaleOnly && !meta.IsWhale {
		return false
	}

	switch e := ev.(type) {
	case model.SwapEvent:
		if f.Exchange != "" && !strings.EqualFold(e.ExchangeName, f.Exchange) && e.Exchange != f.Exchange {
			return false
		}
		if f.Token != "" && !symbolIs(e.TokenIn, f.Token) && !symbolIs(e.TokenOut, f.Token) {
			return false
		}
		if f.MinUSD > 0 && e.TokenIn.USDValue() < f.MinUSD {
			return false
		}
		if f.Address != "" && meta.Sender != f.Address {
			return false
		}
		if f.Pool != "" && e.Exchange != f.Pool {
			return false
		}
	case model.LiquidityEvent:
		if f.Token != "" && !symbolIs(e.Token0, f.Token) && !symbolIs(e.Token1, f.Token) {
			return false
		}
		if f.MinUSD > 0 && e.TotalUSDValue() < f.MinUSD {
			return false
		}
		if f.Address != "" && meta.Sender != f.Address {
			return false
		}
		if f.Pool != "" && e.Pool.Contract != f.Pool {
			return false
		}
		if f.Action != "" && e.Action != f.Action {
			return false
		}
	case model.TransferEvent:
		if f.Token != "" && !symbolIs(e.Token, f.Token) {
			return false
		}
		if f.MinUSD > 0 && e.Token.USDValue() < f.MinUSD {
			return false
		}
		if f.Address != "" && meta.Sender != f.Address && e.Recipient != f.Address {
			return false
		}
	}
	return true
}

func symbolIs(token model.TokenAmount, symbol string) bool {
	return strings.EqualFold(token.Symbol, symbol) || token.Contract == symbol
}
