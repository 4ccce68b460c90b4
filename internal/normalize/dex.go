package normalize

import "strings"

const unknownDex = "Unknown DEX"

var knownExchanges = map[string]string{
	"SP3K8BC0PPEVCV7NZ6QSRWPQ2JE9E5B6N3PA0KBR9.amm-swap-pool-v1-1":        "ALEX",
	"SP3K8BC0PPEVCV7NZ6QSRWPQ2JE9E5B6N3PA0KBR9.swap-helper-v1-03":         "ALEX",
	"SP102V8P0F7JX67ARQ77WEA3D3CFB5XW39REDT0AM.amm-pool-v2-01":            "ALEX",
	"SP2C2YFP12AJZB4MABJBAJ55XECVS7E4PMMZ89YZR.arkadiko-swap-v2-1":        "Arkadiko",
	"SP1Z92MPDQEWZXW36VX71Q25HKF5K2EPCJ304F275.stackswap-swap-v5k":        "StackSwap",
	"SP1Y5YSTAHZ88XYK1VPDH24GY0HPX5J4JECTMY4A1.univ2-router":              "Velar",
	"SP1Y5YSTAHZ88XYK1VPDH24GY0HPX5J4JECTMY4A1.univ2-core":                "Velar",
	"SM1793C4R5PZ4NS4VQ4WMP7SKKYVH8JZEWSZ9HCCR.xyk-core-v-1-2":            "Bitflow",
	"SPQC38PW542EQJ5M11CR25P7BS1CA6QT4TBXGB3M.stableswap-stx-ststx-v-1-2": "Bitflow",
}

// ExchangeNames maps exchange contract ids to display names.
type ExchangeNames struct {
	names map[string]string
}

// NewExchangeNames returns the built-in table extended with overrides.
func NewExchangeNames(overrides map[string]string) ExchangeNames {
	names := make(map[string]string, len(knownExchanges)+len(overrides))
	for contract, name := range knownExchanges {
		names[contract] = name
	}
	for contract, name := range overrides {
		contract = strings.TrimSpace(contract)
		if contract == "" || name == "" {
			continue
		}
		names[contract] = name
	}
	return ExchangeNames{names: names}
}

// Name returns the display name or "Unknown DEX".
func (e ExchangeNames) Name(contract string) string {
	if name, ok := e.names[contract]; ok {
		return name
	}
	return unknownDex
}
