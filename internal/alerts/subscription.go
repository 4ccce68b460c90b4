package alerts

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"hookScope/internal/model"
)

// Channel is an external delivery channel.
type Channel string

const (
	ChannelTelegram Channel = "telegram"
	ChannelDiscord  Channel = "discord"
	ChannelWebhook  Channel = "webhook"
	ChannelEmail    Channel = "email"
)

// requiredConfig is the config key each channel needs to deliver.
var requiredConfig = map[Channel]string{
	ChannelTelegram: "chatId",
	ChannelDiscord:  "webhookUrl",
	ChannelWebhook:  "url",
	ChannelEmail:    "address",
}

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrUnsupportedChannel   = errors.New("unsupported channel")
	ErrMissingConfig        = errors.New("missing channel config")
	ErrOwnerRequired        = errors.New("owner required")
)

// ParseChannel validates a channel name.
func ParseChannel(input string) (Channel, error) {
	ch := Channel(strings.ToLower(strings.TrimSpace(input)))
	if _, ok := requiredConfig[ch]; !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedChannel, input)
	}
	return ch, nil
}

// Filters restrict which alerts a subscription receives. Empty lists allow everything.
type Filters struct {
	AlertTypes []model.AlertType `json:"alertTypes,omitempty"`
	MinAmount  float64           `json:"minAmount,omitempty"`
	Tokens     []string          `json:"tokens,omitempty"`
}

// Match reports whether alert passes every filter.
func (f Filters) Match(alert model.WhaleAlert) bool {
	if len(f.AlertTypes) > 0 {
		found := false
		for _, t := range f.AlertTypes {
			if t == alert.Type {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.MinAmount > 0 && alert.Amount < f.MinAmount {
		return false
	}
	if len(f.Tokens) > 0 {
		found := false
		for _, token := range f.Tokens {
			if strings.EqualFold(token, alert.Token) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Subscription routes matching alerts of one owner to one channel.
type Subscription struct {
	ID        string            `json:"id"`
	Owner     string            `json:"owner"`
	Channel   Channel           `json:"channel"`
	Config    map[string]string `json:"config"`
	Filters   Filters           `json:"filters"`
	Active    bool              `json:"active"`
	CreatedAt time.Time         `json:"createdAt"`
}

func (s Subscription) clone() Subscription {
	cfg := make(map[string]string, len(s.Config))
	for k, v := range s.Config {
		cfg[k] = v
	}
	s.Config = cfg
	s.Filters.AlertTypes = append([]model.AlertType(nil), s.Filters.AlertTypes...)
	s.Filters.Tokens = append([]string(nil), s.Filters.Tokens...)
	return s
}
