package analytics

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"hookScope/internal/model"
)

const (
	poolA = "SP1.pool-a"
	poolB = "SP1.pool-b"
)

var testNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestStore(limit int) *Store {
	return New(Config{HistoryLimit: limit, Now: func() time.Time { return testNow }}, nil)
}

func usd(v float64) *float64 { return &v }

func token(contract, symbol string, amount int64, price *float64) model.TokenAmount {
	return model.TokenAmount{
		Contract: contract,
		Symbol:   symbol,
		Decimals: 6,
		Raw:      fmt.Sprintf("%d000000", amount),
		Amount:   decimal.NewFromInt(amount),
		USD:      price,
	}
}

func swapAt(id int, ts time.Time, exchange string, inUSD float64) model.SwapEvent {
	return model.SwapEvent{
		EventMeta:    model.EventMeta{TxID: fmt.Sprintf("0x%064x", id), Timestamp: ts.Unix(), Sender: fmt.Sprintf("SP%d", id)},
		TokenIn:      token("STX", "STX", 10, usd(inUSD)),
		TokenOut:     token("SP1.alex", "ALEX", 20, nil),
		Exchange:     exchange,
		ExchangeName: "ALEX",
	}
}

func liquidityAt(id int, ts time.Time, pool string, action model.LiquidityAction, total float64) model.LiquidityEvent {
	return model.LiquidityEvent{
		EventMeta: model.EventMeta{TxID: fmt.Sprintf("0x%064x", id), Timestamp: ts.Unix(), Sender: "SPLP"},
		Action:    action,
		Pool:      model.PoolRef{Contract: pool, Name: "STX-ALEX", Token0: "STX", Token1: "SP1.alex"},
		Token0:    token("STX", "STX", 100, nil),
		Token1:    token("SP1.alex", "ALEX", 200, nil),
		TotalUSD:  usd(total),
	}
}

func transferAt(id int, ts time.Time, whale bool) model.TransferEvent {
	return model.TransferEvent{
		EventMeta: model.EventMeta{TxID: fmt.Sprintf("0x%064x", id), Timestamp: ts.Unix(), Sender: "SPFROM", IsWhale: whale},
		Asset:     model.AssetSTX,
		Token:     token("STX", "STX", 5, nil),
		Recipient: fmt.Sprintf("SPTO%d", id),
	}
}

func TestStatsEmptyStore(t *testing.T) {
	s := newTestStore(0)
	stats := s.Stats()
	if stats != (model.DashboardStats{}) {
		t.Fatalf("stats mismatch: %+v", stats)
	}
}

func TestStatsTrailingWindow(t *testing.T) {
	s := newTestStore(0)
	s.Record(swapAt(1, testNow.Add(-time.Hour), poolA, 200_000))
	s.Record(swapAt(2, testNow.Add(-25*time.Hour), poolA, 1_000))
	s.Record(transferAt(3, testNow.Add(-2*time.Hour), true))
	s.Record(liquidityAt(4, testNow.Add(-time.Minute), poolA, model.LiquidityAdd, 500))

	stats := s.Stats()
	if stats.TotalTransactions24h != 2 {
		t.Fatalf("transactions mismatch: %d", stats.TotalTransactions24h)
	}
	if stats.TotalVolume24h != 200_000 {
		t.Fatalf("volume mismatch: %v", stats.TotalVolume24h)
	}
	// SP1, SPFROM, SPTO3, SPLP
	if stats.ActiveWallets24h != 4 {
		t.Fatalf("wallets mismatch: %d", stats.ActiveWallets24h)
	}
	if stats.TotalTVL != 500 || stats.PoolCount != 1 {
		t.Fatalf("tvl mismatch: %+v", stats)
	}
	if stats.WhaleEvents24h != 1 || stats.LiquidityEvents24h != 1 || stats.Swaps24h != 1 {
		t.Fatalf("counts mismatch: %+v", stats)
	}
}

func TestTVLClampedAtZero(t *testing.T) {
	s := newTestStore(0)
	s.Record(liquidityAt(1, testNow, poolA, model.LiquidityAdd, 100))
	s.Record(liquidityAt(2, testNow, poolA, model.LiquidityRemove, 250))

	pools := s.TopPools(10)
	if len(pools) != 1 {
		t.Fatalf("pools mismatch: %d", len(pools))
	}
	if pools[0].TVLUSD != 0 {
		t.Fatalf("tvl mismatch: %v", pools[0].TVLUSD)
	}
	if pools[0].Token0.Reserve != "0" {
		t.Fatalf("reserve mismatch: %s", pools[0].Token0.Reserve)
	}
}

func TestPoolSwapStats(t *testing.T) {
	s := newTestStore(0)
	s.Record(liquidityAt(1, testNow, poolA, model.LiquidityAdd, 10_000))
	s.Record(swapAt(2, testNow, poolA, 1_000))
	s.Record(swapAt(3, testNow, poolA, 1_000))

	pool := s.TopPools(1)[0]
	if pool.Volume24hUSD != 2_000 {
		t.Fatalf("volume mismatch: %v", pool.Volume24hUSD)
	}
	if diff := pool.Fees24hUSD - 6; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("fees mismatch: %v", pool.Fees24hUSD)
	}
	if pool.Price != 2 || pool.PrevPrice != 2 {
		t.Fatalf("price mismatch: %v %v", pool.Price, pool.PrevPrice)
	}
	// 6/10000 * 365 * 100
	if diff := pool.APR - 21.9; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("apr mismatch: %v", pool.APR)
	}

	tokens := s.TopTokens(0)
	if len(tokens) != 2 || tokens[0].SwapCount != 2 || tokens[0].Volume24hUSD != 2_000 {
		t.Fatalf("tokens mismatch: %+v", tokens)
	}
}

func TestTopPoolsStableAndIdempotent(t *testing.T) {
	s := newTestStore(0)
	s.Record(liquidityAt(1, testNow, poolA, model.LiquidityAdd, 100))
	s.Record(liquidityAt(2, testNow, poolB, model.LiquidityAdd, 100))
	s.Record(liquidityAt(3, testNow, "SP1.pool-c", model.LiquidityAdd, 300))

	first := s.TopPools(3)
	second := s.TopPools(3)
	want := []string{"SP1.pool-c", poolA, poolB}
	for i := range want {
		if first[i].Contract != want[i] || second[i].Contract != want[i] {
			t.Fatalf("order mismatch: %v %v", first, second)
		}
	}
	if len(s.TopPools(2)) != 2 {
		t.Fatalf("limit mismatch")
	}
}

func TestHistoryFiltersAndPagination(t *testing.T) {
	s := newTestStore(0)
	for i := 1; i <= 5; i++ {
		s.Record(swapAt(i, testNow.Add(time.Duration(i)*time.Minute), poolA, float64(i*100)))
	}
	other := swapAt(6, testNow, poolB, 10_000)
	other.ExchangeName = "Velar"
	s.Record(other)

	items, total := s.History(model.KindSwap, Filter{Exchange: "alex"}, Page{Offset: 1, Limit: 2})
	if total != 5 || len(items) != 2 {
		t.Fatalf("page mismatch: total=%d len=%d", total, len(items))
	}
	if items[0].Meta().TxID != fmt.Sprintf("0x%064x", 4) {
		t.Fatalf("order mismatch: %s", items[0].Meta().TxID)
	}

	items, total = s.History(model.KindSwap, Filter{MinUSD: 300, Exchange: "ALEX"}, Page{})
	if total != 3 || len(items) != 3 {
		t.Fatalf("min usd mismatch: %d", total)
	}

	_, total = s.History(model.KindSwap, Filter{Token: "alex", Pool: poolB}, Page{})
	if total != 1 {
		t.Fatalf("pool filter mismatch: %d", total)
	}

	items, total = s.History(model.KindSwap, Filter{}, Page{Offset: 10, Limit: 5})
	if total != 6 || len(items) != 0 {
		t.Fatalf("offset past end mismatch: %d %d", total, len(items))
	}

	s.Record(liquidityAt(7, testNow, poolA, model.LiquidityRemove, 1))
	s.Record(liquidityAt(8, testNow, poolA, model.LiquidityAdd, 1))
	_, total = s.History(model.KindLiquidity, Filter{Action: model.LiquidityRemove}, Page{})
	if total != 1 {
		t.Fatalf("action filter mismatch: %d", total)
	}

	s.Record(transferAt(9, testNow, true))
	s.Record(transferAt(10, testNow, false))
	_, total = s.History(model.KindTransfer, Filter{WhaleOnly: true}, Page{})
	if total != 1 {
		t.Fatalf("whale filter mismatch: %d", total)
	}
	_, total = s.History(model.KindTransfer, Filter{Address: "SPTO10"}, Page{})
	if total != 1 {
		t.Fatalf("address filter mismatch: %d", total)
	}
}

func TestHistoryLimitEvictsOldest(t *testing.T) {
	s := newTestStore(3)
	for i := 1; i <= 5; i++ {
		s.Record(transferAt(i, testNow, false))
	}
	items, total := s.History(model.KindTransfer, Filter{}, Page{})
	if total != 3 {
		t.Fatalf("total mismatch: %d", total)
	}
	if items[2].Meta().TxID != fmt.Sprintf("0x%064x", 3) {
		t.Fatalf("oldest kept mismatch: %s", items[2].Meta().TxID)
	}
}

func TestSweepRemovesExpiredEvents(t *testing.T) {
	s := newTestStore(0)
	s.Record(swapAt(1, testNow.Add(-8*24*time.Hour), poolA, 1))
	s.Record(transferAt(2, testNow.Add(-7*24*time.Hour-time.Second), false))
	s.Record(transferAt(3, testNow.Add(-6*24*time.Hour), false))
	s.Record(liquidityAt(4, testNow.Add(-9*24*time.Hour), poolA, model.LiquidityAdd, 50))

	before := s.Len()
	removed := s.Sweep(testNow)
	if removed != 3 {
		t.Fatalf("removed mismatch: %d", removed)
	}
	if s.Len() != before-removed {
		t.Fatalf("len mismatch: %d", s.Len())
	}
	if len(s.TopPools(0)) != 1 {
		t.Fatalf("pools should survive sweep")
	}
	if s.Sweep(testNow) != 0 {
		t.Fatalf("second sweep should remove nothing")
	}
}

func TestVolumeByPeriod(t *testing.T) {
	s := newTestStore(0)
	base := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	s.Record(swapAt(1, base.Add(30*time.Minute), poolA, 10))
	s.Record(swapAt(2, base.Add(50*time.Minute), poolA, 20))
	s.Record(swapAt(3, base.Add(5*time.Hour), poolA, 5))

	buckets := s.VolumeByPeriod(1)
	if len(buckets) != 2 {
		t.Fatalf("bucket count mismatch: %d", len(buckets))
	}
	if buckets[0].Start != base.Unix() || buckets[0].VolumeUSD != 30 || buckets[0].Count != 2 {
		t.Fatalf("first bucket mismatch: %+v", buckets[0])
	}
	if buckets[1].Start != base.Add(5*time.Hour).Unix() {
		t.Fatalf("second bucket mismatch: %+v", buckets[1])
	}

	if got := s.VolumeByPeriod(24); len(got) != 1 || got[0].Count != 3 {
		t.Fatalf("daily bucket mismatch: %+v", got)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	s := New(Config{SweepInterval: time.Millisecond, Now: func() time.Time { return testNow }}, nil)
	s.Record(transferAt(1, testNow.Add(-30*24*time.Hour), false))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for s.Len() != 0 {
		select {
		case <-deadline:
			t.Fatalf("sweeper did not run")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("run error: %v", err)
	}
}
