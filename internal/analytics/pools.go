package analytics

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"

	"hookScope/internal/model"
)

const (
	swapFeeRate   = 0.003
	feeWindowSecs = int64(24 * time.Hour / time.Second)
)

type poolEntry struct {
	stats    model.PoolStats
	reserve0 decimal.Decimal
	reserve1 decimal.Decimal
}

func (p *poolEntry) snapshot() model.PoolStats {
	stats := p.stats
	stats.Token0.Reserve = p.reserve0.String()
	stats.Token1.Reserve = p.reserve1.String()
	return stats
}

func (s *Store) applyLiquidity(ev model.LiquidityEvent) {
	key := ev.Pool.Contract
	if key == "" {
		return
	}

	pool, ok := s.pools[key]
	if !ok {
		pool = &poolEntry{stats: model.PoolStats{
			Contract:  key,
			Name:      ev.Pool.Name,
			Token0:    model.PoolToken{Contract: ev.Token0.Contract, Symbol: ev.Token0.Symbol},
			Token1:    model.PoolToken{Contract: ev.Token1.Contract, Symbol: ev.Token1.Symbol},
			FirstSeen: ev.Timestamp,
		}}
		s.pools[key] = pool
		s.poolOrder = append(s.poolOrder, key)
	}

	usd := ev.TotalUSDValue()
	switch ev.Action {
	case model.LiquidityAdd:
		pool.stats.TVLUSD += usd
		pool.reserve0 = pool.reserve0.Add(ev.Token0.Amount)
		pool.reserve1 = pool.reserve1.Add(ev.Token1.Amount)
	case model.LiquidityRemove:
		// TVL is an approximation from priced legs only; it never goes negative.
		pool.stats.TVLUSD -= usd
		if pool.stats.TVLUSD < 0 {
			pool.stats.TVLUSD = 0
		}
		pool.reserve0 = clampZero(pool.reserve0.Sub(ev.Token0.Amount))
		pool.reserve1 = clampZero(pool.reserve1.Sub(ev.Token1.Amount))
	}

	pool.stats.APR = computeAPR(pool.stats.Fees24hUSD, pool.stats.TVLUSD, feeWindowSecs)
	pool.stats.LastUpdated = ev.Timestamp
}

func (s *Store) applySwap(ev model.SwapEvent) {
	usd := ev.TokenIn.USDValue()

	if pool, ok := s.pools[ev.Exchange]; ok {
		pool.stats.Volume24hUSD += usd
		pool.stats.Fees24hUSD += usd * swapFeeRate
		if ev.TokenIn.Amount.IsPositive() {
			price, _ := ev.TokenOut.Amount.Div(ev.TokenIn.Amount).Float64()
			pool.stats.PrevPrice = pool.stats.Price
			pool.stats.Price = price
		}
		pool.stats.APR = computeAPR(pool.stats.Fees24hUSD, pool.stats.TVLUSD, feeWindowSecs)
		pool.stats.LastUpdated = ev.Timestamp
	}

	s.addTokenVolume(ev.TokenIn, usd, ev.Timestamp)
	if ev.TokenOut.Contract != ev.TokenIn.Contract {
		s.addTokenVolume(ev.TokenOut, usd, ev.Timestamp)
	}
}

// addTokenVolume credits the swap notional to one leg's token.
func (s *Store) addTokenVolume(token model.TokenAmount, usd float64, ts int64) {
	if token.Contract == "" {
		return
	}
	stats, ok := s.tokens[token.Contract]
	if !ok {
		stats = &model.TokenStats{Contract: token.Contract, Symbol: token.Symbol, FirstSeen: ts}
		s.tokens[token.Contract] = stats
		s.tokenOrder = append(s.tokenOrder, token.Contract)
	}
	stats.Volume24hUSD += usd
	stats.SwapCount++
}

// computeAPR annualizes the fee yield of a window, in percent.
func computeAPR(fees, tvl float64, windowSeconds int64) float64 {
	if windowSeconds <= 0 || fees <= 0 || tvl <= 0 {
		return 0
	}
	feeRate := new(big.Rat).SetFloat64(fees)
	if feeRate == nil {
		return 0
	}
	tvlRat := new(big.Rat).SetFloat64(tvl)
	if tvlRat == nil {
		return 0
	}
	feeRate.Quo(feeRate, tvlRat)

	yearSeconds := big.NewRat(int64(365*24*time.Hour/time.Second), 1)
	window := big.NewRat(windowSeconds, 1)
	apr := new(big.Rat).Mul(feeRate, yearSeconds)
	apr.Quo(apr, window)
	apr.Mul(apr, big.NewRat(100, 1))

	val, _ := apr.Float64()
	return val
}

func clampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
