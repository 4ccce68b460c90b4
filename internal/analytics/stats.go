package analytics

import (
	"sort"

	"hookScope/internal/model"
)

// Stats summarizes the trailing 24h window. An empty store yields all zero fields.
func (s *Store) Stats() model.DashboardStats {
	since := s.cfg.Now().Add(-statsWindow).Unix()

	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats model.DashboardStats
	wallets := make(map[string]struct{})
	addWallet := func(addr string) {
		if addr != "" {
			wallets[addr] = struct{}{}
		}
	}

	for _, history := range s.events {
		for _, ev := range history {
			meta := ev.Meta()
			if meta.Timestamp < since {
				continue
			}
			addWallet(meta.Sender)
			if meta.IsWhale {
				stats.WhaleEvents24h++
			}
			switch e := ev.(type) {
			case model.SwapEvent:
				stats.Swaps24h++
				stats.TotalVolume24h += e.TokenIn.USDValue()
			case model.LiquidityEvent:
				stats.LiquidityEvents24h++
			case model.TransferEvent:
				stats.Transfers24h++
				addWallet(e.Recipient)
			}
		}
	}

	stats.TotalTransactions24h = stats.Swaps24h + stats.Transfers24h
	stats.ActiveWallets24h = len(wallets)
	for _, pool := range s.pools {
		stats.TotalTVL += pool.stats.TVLUSD
	}
	stats.PoolCount = len(s.pools)
	stats.TokenCount = len(s.tokens)
	return stats
}

// TopPools returns up to n pools by TVL, descending. Ties keep first-seen order.
func (s *Store) TopPools(n int) []model.PoolStats {
	s.mu.RLock()
	pools := make([]model.PoolStats, 0, len(s.poolOrder))
	for _, key := range s.poolOrder {
		pools = append(pools, s.pools[key].snapshot())
	}
	s.mu.RUnlock()

	sort.SliceStable(pools, func(i, j int) bool {
		return pools[i].TVLUSD > pools[j].TVLUSD
	})
	return truncate(pools, n)
}

// TopTokens returns up to n tokens by 24h volume, descending. Ties keep first-seen order.
func (s *Store) TopTokens(n int) []model.TokenStats {
	s.mu.RLock()
	tokens := make([]model.TokenStats, 0, len(s.tokenOrder))
	for _, key := range s.tokenOrder {
		tokens = append(tokens, *s.tokens[key])
	}
	s.mu.RUnlock()

	sort.SliceStable(tokens, func(i, j int) bool {
		return tokens[i].Volume24hUSD > tokens[j].Volume24hUSD
	})
	return truncate(tokens, n)
}

// VolumeByPeriod buckets stored swaps into epoch-anchored windows of the given hours.
// Only non-empty buckets are returned, ascending by start.
func (s *Store) VolumeByPeriod(hours int) []model.VolumeBucket {
	if hours <= 0 {
		hours = 1
	}
	width := int64(hours) * 3600

	s.mu.RLock()
	buckets := make(map[int64]*model.VolumeBucket)
	for _, ev := range s.events[model.KindSwap] {
		swap, ok := ev.(model.SwapEvent)
		if !ok {
			continue
		}
		start := windowStart(swap.Timestamp, width)
		bucket, ok := buckets[start]
		if !ok {
			bucket = &model.VolumeBucket{Start: start}
			buckets[start] = bucket
		}
		bucket.VolumeUSD += swap.TokenIn.USDValue()
		bucket.Count++
	}
	s.mu.RUnlock()

	out := make([]model.VolumeBucket, 0, len(buckets))
	for _, bucket := range buckets {
		out = append(out, *bucket)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

func windowStart(ts, width int64) int64 {
	start := ts - ts%width
	if ts < 0 && ts%width != 0 {
		start -= width
	}
	return start
}

func truncate[T any](items []T, n int) []T {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}
