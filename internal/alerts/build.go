package alerts

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"hookScope/internal/model"
)

const (
	criticalRatio = 10
	warningRatio  = 3
)

// SeverityFor grades a magnitude by its multiple of the whale threshold.
func SeverityFor(ratio float64) model.Severity {
	switch {
	case ratio >= criticalRatio:
		return model.SeverityCritical
	case ratio >= warningRatio:
		return model.SeverityWarning
	default:
		return model.SeverityInfo
	}
}

// Build wraps a whale event into an alert. newWallet marks a transfer whose sender
// was never seen before.
func Build(ev model.Event, mag model.Magnitude, newWallet bool, now time.Time) model.WhaleAlert {
	alert := model.WhaleAlert{
		ID:        uuid.NewString(),
		Severity:  SeverityFor(mag.Ratio()),
		Token:     mag.Token,
		Event:     ev,
		CreatedAt: now.UTC(),
	}
	if mag.USD != nil {
		alert.Amount = *mag.USD
	} else {
		alert.Amount, _ = mag.Amount.Float64()
	}

	size := describe(mag)
	switch e := ev.(type) {
	case model.SwapEvent:
		alert.Type = model.AlertLargeSwap
		alert.Message = fmt.Sprintf("Large swap on %s: %s %s for %s %s%s",
			e.ExchangeName, e.TokenIn.Amount.String(), e.TokenIn.Symbol,
			e.TokenOut.Amount.String(), e.TokenOut.Symbol, size)
	case model.LiquidityEvent:
		alert.Type = model.AlertLargeLiquidity
		alert.Message = fmt.Sprintf("Large liquidity %s in %s%s", e.Action, e.Pool.Name, size)
	case model.TransferEvent:
		alert.Type = model.AlertLargeTransfer
		verb := "Large transfer"
		if newWallet {
			alert.Type = model.AlertNewWalletActivity
			verb = "New wallet transfer"
		}
		alert.Message = fmt.Sprintf("%s: %s %s from %s to %s%s",
			verb, e.Token.Amount.String(), e.Token.Symbol, e.Sender, e.Recipient, size)
	}
	return alert
}

func describe(mag model.Magnitude) string {
	if mag.USD == nil {
		return ""
	}
	return fmt.Sprintf(" ($%.2f)", *mag.USD)
}
