package model

import "github.com/shopspring/decimal"

// Magnitude units.
const (
	UnitUSD = "usd"
	UnitSTX = "stx"
	UnitRaw = "raw"
)

// Magnitude is the size of an event as compared against its whale threshold.
type Magnitude struct {
	Token     string
	Amount    decimal.Decimal
	USD       *float64
	Value     decimal.Decimal
	Threshold decimal.Decimal
	Unit      string
}

// IsWhale reports Value >= Threshold. A zero threshold never matches.
func (m Magnitude) IsWhale() bool {
	return m.Threshold.IsPositive() && m.Value.GreaterThanOrEqual(m.Threshold)
}

// Ratio returns Value / Threshold, or 0 without a threshold.
func (m Magnitude) Ratio() float64 {
	if !m.Threshold.IsPositive() {
		return 0
	}
	ratio, _ := m.Value.Div(m.Threshold).Float64()
	return ratio
}
