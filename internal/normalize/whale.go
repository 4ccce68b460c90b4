package normalize

import (
	"github.com/shopspring/decimal"

	"hookScope/internal/model"
)

// Thresholds configures whale classification.
type Thresholds struct {
	// STX is compared against whole-STX transfer amounts.
	STX decimal.Decimal
	// USD is compared against USD notional when a price is known.
	USD decimal.Decimal
	// Raw is compared against the smallest-unit amount when no price is known.
	Raw decimal.Decimal
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		STX: decimal.NewFromInt(100_000),
		USD: decimal.NewFromInt(50_000),
		Raw: decimal.New(1, 12),
	}
}

// Classifier measures events against the whale thresholds.
type Classifier struct {
	th Thresholds
}

func NewClassifier(th Thresholds) Classifier {
	return Classifier{th: th}
}

// Measure returns the magnitude used to classify ev. Comparison is inclusive.
func (c Classifier) Measure(ev model.Event) model.Magnitude {
	switch e := ev.(type) {
	case model.SwapEvent:
		return c.measureLeg(e.TokenIn, true)
	case model.LiquidityEvent:
		if e.TotalUSD != nil {
			return model.Magnitude{
				Token:     e.Pool.Name,
				Amount:    e.Token0.Amount,
				USD:       e.TotalUSD,
				Value:     decimal.NewFromFloat(*e.TotalUSD),
				Threshold: c.th.USD,
				Unit:      model.UnitUSD,
			}
		}
		return c.measureLeg(e.Token0, true)
	case model.TransferEvent:
		switch e.Asset {
		case model.AssetNFT:
			return model.Magnitude{Token: e.Token.Symbol, Amount: e.Token.Amount}
		case model.AssetSTX:
			return c.measureLeg(e.Token, false)
		default:
			return c.measureLeg(e.Token, true)
		}
	default:
		return model.Magnitude{}
	}
}

func (c Classifier) measureLeg(t model.TokenAmount, preferUSD bool) model.Magnitude {
	mag := model.Magnitude{Token: t.Symbol, Amount: t.Amount, USD: t.USD}
	switch {
	case preferUSD && t.USD != nil:
		mag.Value = decimal.NewFromFloat(*t.USD)
		mag.Threshold = c.th.USD
		mag.Unit = model.UnitUSD
	case t.Contract == stxContract:
		mag.Value = t.Amount
		mag.Threshold = c.th.STX
		mag.Unit = model.UnitSTX
	default:
		raw, err := decimal.NewFromString(t.Raw)
		if err != nil {
			return mag
		}
		mag.Value = raw
		mag.Threshold = c.th.Raw
		mag.Unit = model.UnitRaw
	}
	return mag
}
