package normalize

import (
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

const (
	stxContract     = "STX"
	stxDecimals     = 6
	defaultDecimals = 6
)

// TokenMeta is the registry entry for a fungible token contract.
type TokenMeta struct {
	Symbol   string
	Decimals int32
}

var knownTokens = map[string]TokenMeta{
	"SP3K8BC0PPEVCV7NZ6QSRWPQ2JE9E5B6N3PA0KBR9.token-alex":        {Symbol: "ALEX", Decimals: 8},
	"SP3K8BC0PPEVCV7NZ6QSRWPQ2JE9E5B6N3PA0KBR9.token-wstx":        {Symbol: "wSTX", Decimals: 8},
	"SP102V8P0F7JX67ARQ77WEA3D3CFB5XW39REDT0AM.token-wstx-v2":     {Symbol: "wSTX", Decimals: 8},
	"SP2C2YFP12AJZB4MABJBAJ55XECVS7E4PMMZ89YZR.arkadiko-token":    {Symbol: "DIKO", Decimals: 6},
	"SP2C2YFP12AJZB4MABJBAJ55XECVS7E4PMMZ89YZR.usda-token":        {Symbol: "USDA", Decimals: 6},
	"SP2C2YFP12AJZB4MABJBAJ55XECVS7E4PMMZ89YZR.wrapped-stx-token": {Symbol: "xSTX", Decimals: 6},
	"SP3DX3H4FEYZJZ586MFBS25ZW3HZDMEW92260R2PR.Wrapped-Bitcoin":   {Symbol: "xBTC", Decimals: 8},
	"SM3VDXK3WZZSA84XXFKAFAF15NNZX32CTSG82JFQ4.sbtc-token":        {Symbol: "sBTC", Decimals: 8},
	"SP1Y5YSTAHZ88XYK1VPDH24GY0HPX5J4JECTMY4A1.velar-token":       {Symbol: "VELAR", Decimals: 6},
	"SP4SZE494VC2YC5JYG7AYFQ44F5Q4PYV7DVMDPBG.ststx-token":        {Symbol: "stSTX", Decimals: 6},
	"SP2XD7417HGPRTREMKF748VNEQPDRR0RMANB7X1NK.token-abtc":        {Symbol: "aBTC", Decimals: 8},
}

// TokenRegistry resolves symbols, decimals and USD prices for token contracts.
type TokenRegistry struct {
	mu     sync.RWMutex
	meta   map[string]TokenMeta
	prices map[string]decimal.Decimal
}

func NewTokenRegistry() *TokenRegistry {
	meta := make(map[string]TokenMeta, len(knownTokens))
	for contract, m := range knownTokens {
		meta[contract] = m
	}
	return &TokenRegistry{
		meta:   meta,
		prices: make(map[string]decimal.Decimal),
	}
}

// Set overrides metadata for a contract.
func (r *TokenRegistry) Set(contract string, meta TokenMeta) {
	r.mu.Lock()
	r.meta[contract] = meta
	r.mu.Unlock()
}

// SetDecimals overrides decimals for a contract, keeping any known symbol.
func (r *TokenRegistry) SetDecimals(contract string, decimals int32) {
	r.mu.Lock()
	meta := r.meta[contract]
	meta.Decimals = decimals
	r.meta[contract] = meta
	r.mu.Unlock()
}

// SetPrice records a USD price keyed by symbol or contract id.
func (r *TokenRegistry) SetPrice(key string, price decimal.Decimal) {
	r.mu.Lock()
	r.prices[priceKey(key)] = price
	r.mu.Unlock()
}

// Lookup returns the contract principal, symbol and decimals for an asset identifier
// of the form `<principal>.<contract>::<token>`. Unknown contracts default to 6 decimals.
func (r *TokenRegistry) Lookup(assetIdentifier string) (string, TokenMeta) {
	if assetIdentifier == "" || strings.EqualFold(assetIdentifier, stxContract) {
		return stxContract, TokenMeta{Symbol: stxContract, Decimals: stxDecimals}
	}

	contract, tokenName := splitAssetIdentifier(assetIdentifier)

	r.mu.RLock()
	meta, ok := r.meta[contract]
	r.mu.RUnlock()

	if !ok {
		meta = TokenMeta{Decimals: defaultDecimals}
	}
	if meta.Symbol == "" {
		meta.Symbol = deriveSymbol(contract, tokenName)
	}
	return contract, meta
}

// Price returns the USD price for a token by contract, then by symbol.
func (r *TokenRegistry) Price(contract, symbol string) (decimal.Decimal, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if price, ok := r.prices[priceKey(contract)]; ok {
		return price, true
	}
	price, ok := r.prices[priceKey(symbol)]
	return price, ok
}

func splitAssetIdentifier(assetIdentifier string) (string, string) {
	parts := strings.SplitN(assetIdentifier, "::", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return assetIdentifier, ""
}

func deriveSymbol(contract, tokenName string) string {
	if tokenName != "" {
		return strings.ToUpper(tokenName)
	}
	if idx := strings.LastIndex(contract, "."); idx >= 0 {
		return strings.ToUpper(contract[idx+1:])
	}
	return strings.ToUpper(contract)
}

func priceKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
