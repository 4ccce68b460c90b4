package model

import "time"

// AlertType classifies a whale alert.
type AlertType string

const (
	AlertLargeTransfer     AlertType = "large_transfer"
	AlertLargeSwap         AlertType = "large_swap"
	AlertLargeLiquidity    AlertType = "large_liquidity"
	AlertNewWalletActivity AlertType = "new_wallet_activity"
)

// Severity is the alert urgency.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// WhaleAlert wraps a whale-sized event. Never mutated after creation.
type WhaleAlert struct {
	ID        string    `json:"id"`
	Type      AlertType `json:"type"`
	Severity  Severity  `json:"severity"`
	Message   string    `json:"message"`
	Token     string    `json:"token"`
	Amount    float64   `json:"amount"`
	Event     Event     `json:"event"`
	CreatedAt time.Time `json:"createdAt"`
}
