package model

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestEventKinds(t *testing.T) {
	events := []Event{SwapEvent{}, LiquidityEvent{}, TransferEvent{}}
	want := []EventKind{KindSwap, KindLiquidity, KindTransfer}
	for i, ev := range events {
		if ev.Kind() != want[i] {
			t.Fatalf("kind mismatch: %s != %s", ev.Kind(), want[i])
		}
	}
}

func TestEventMetaKey(t *testing.T) {
	ev := TransferEvent{EventMeta: EventMeta{TxID: "0xabc", EventIndex: 3}}
	if got := ev.Meta().Key(); got != "0xabc:3" {
		t.Fatalf("key mismatch: %s", got)
	}
}

func TestSwapEventJSONFlattensMeta(t *testing.T) {
	usd := 12.5
	ev := SwapEvent{
		EventMeta: EventMeta{TxID: "0x1", BlockHeight: 7, Timestamp: 1700000000, Sender: "SP1", IsWhale: true},
		TokenIn:   TokenAmount{Symbol: "STX", Raw: "1000000", Amount: decimal.RequireFromString("1"), USD: &usd},
	}

	data, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded["txId"] != "0x1" {
		t.Fatalf("txId should be top level: %v", decoded)
	}
	if decoded["isWhale"] != true {
		t.Fatalf("isWhale mismatch: %v", decoded["isWhale"])
	}
	tokenIn, ok := decoded["tokenIn"].(map[string]interface{})
	if !ok {
		t.Fatalf("tokenIn missing")
	}
	if _, ok := tokenIn["amount"].(string); !ok {
		t.Fatalf("amount should be string")
	}
	if tokenIn["usdValue"] != 12.5 {
		t.Fatalf("usdValue mismatch: %v", tokenIn["usdValue"])
	}
}
