package normalize

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestTokenRegistryLookup(t *testing.T) {
	r := NewTokenRegistry()

	contract, meta := r.Lookup(tokenALEX)
	if contract != "SP3K8BC0PPEVCV7NZ6QSRWPQ2JE9E5B6N3PA0KBR9.token-alex" || meta.Symbol != "ALEX" || meta.Decimals != 8 {
		t.Fatalf("alex lookup mismatch: %s %+v", contract, meta)
	}

	contract, meta = r.Lookup("")
	if contract != stxContract || meta.Decimals != 6 {
		t.Fatalf("stx lookup mismatch: %s %+v", contract, meta)
	}

	r.SetDecimals("SP9.custom", 2)
	_, meta = r.Lookup("SP9.custom::cst")
	if meta.Decimals != 2 || meta.Symbol != "CST" {
		t.Fatalf("override mismatch: %+v", meta)
	}
}

func TestTokenRegistryPrice(t *testing.T) {
	r := NewTokenRegistry()
	r.SetPrice("alex", decimal.RequireFromString("0.1"))
	r.SetPrice("SP9.custom", decimal.NewFromInt(3))

	if price, ok := r.Price("SP3K8BC0PPEVCV7NZ6QSRWPQ2JE9E5B6N3PA0KBR9.token-alex", "ALEX"); !ok || !price.Equal(decimal.RequireFromString("0.1")) {
		t.Fatalf("symbol price mismatch: %s %v", price, ok)
	}
	if price, ok := r.Price("SP9.custom", "CST"); !ok || !price.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("contract price mismatch: %s %v", price, ok)
	}
	if _, ok := r.Price("SP9.none", "NONE"); ok {
		t.Fatalf("unexpected price")
	}
}

func TestCanonicalTxID(t *testing.T) {
	id, err := canonicalTxID("0xABCDEF0000000000000000000000000000000000000000000000000000000001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "0xabcdef0000000000000000000000000000000000000000000000000000000001" {
		t.Fatalf("id mismatch: %s", id)
	}
	for _, bad := range []string{"", "0x1234", "abc", "0xzz00000000000000000000000000000000000000000000000000000000000000"} {
		if _, err := canonicalTxID(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
