// Package broadcast fans normalized events out to live subscribers.
package broadcast

import (
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"hookScope/internal/metrics"
)

const (
	ChannelAll        = "all"
	ChannelSwap       = "swap"
	ChannelLiquidity  = "liquidity"
	ChannelTransfer   = "transfer"
	ChannelWhaleAlert = "whale-alert"
)

var validChannels = map[string]struct{}{
	ChannelAll:        {},
	ChannelSwap:       {},
	ChannelLiquidity:  {},
	ChannelTransfer:   {},
	ChannelWhaleAlert: {},
}

var (
	ErrUnknownChannel = errors.New("unknown channel")
	ErrUnknownClient  = errors.New("unknown client")
)

// ValidChannel reports whether name is a broadcast channel.
func ValidChannel(name string) bool {
	_, ok := validChannels[name]
	return ok
}

// Message is the envelope for every server to client frame.
type Message struct {
	Type      string      `json:"type"`
	ClientID  string      `json:"clientId,omitempty"`
	Channel   string      `json:"channel,omitempty"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp,omitempty"`
}

// Client is one live subscriber connection.
type Client interface {
	ID() string
	Send(msg Message) error
	Close() error
}

// Config controls the hub.
type Config struct {
	WriteTimeout time.Duration
	Now          func() time.Time
	Metrics      *metrics.Metrics
}

type member struct {
	client   Client
	channels map[string]struct{}
}

// Hub tracks clients and their channel memberships.
type Hub struct {
	cfg    Config
	logger *zap.Logger

	mu      sync.RWMutex
	members map[string]*member

	// dispatch serializes publishes so every client sees publish order.
	dispatch sync.Mutex
}

func NewHub(cfg Config, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	return &Hub{
		cfg:     cfg,
		logger:  logger,
		members: make(map[string]*member),
	}
}

// Register adds c subscribed to "all" and returns its channel set.
func (h *Hub) Register(c Client) []string {
	h.mu.Lock()
	h.members[c.ID()] = &member{
		client:   c,
		channels: map[string]struct{}{ChannelAll: {}},
	}
	h.mu.Unlock()

	h.cfg.Metrics.ClientConnected()
	h.logger.Debug("client registered", zap.String("client", c.ID()))
	return []string{ChannelAll}
}

// Unregister removes a client. Unknown ids are ignored.
func (h *Hub) Unregister(id string) {
	h.remove(id, false)
}

func (h *Hub) remove(id string, dropped bool) bool {
	h.mu.Lock()
	_, ok := h.members[id]
	delete(h.members, id)
	h.mu.Unlock()

	if ok {
		h.cfg.Metrics.ClientDisconnected(dropped)
		h.logger.Debug("client unregistered", zap.String("client", id), zap.Bool("dropped", dropped))
	}
	return ok
}

// Subscribe adds channel to the client's set. Unknown channels leave state unchanged.
func (h *Hub) Subscribe(id, channel string) error {
	if !ValidChannel(channel) {
		return ErrUnknownChannel
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	m, ok := h.members[id]
	if !ok {
		return ErrUnknownClient
	}
	m.channels[channel] = struct{}{}
	return nil
}

// Unsubscribe removes channel from the client's set.
func (h *Hub) Unsubscribe(id, channel string) error {
	if !ValidChannel(channel) {
		return ErrUnknownChannel
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	m, ok := h.members[id]
	if !ok {
		return ErrUnknownClient
	}
	delete(m.channels, channel)
	return nil
}

// Channels returns the client's subscriptions, sorted.
func (h *Hub) Channels(id string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	m, ok := h.members[id]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(m.channels))
	for ch := range m.channels {
		out = append(out, ch)
	}
	sort.Strings(out)
	return out
}

// ClientCount returns the number of registered clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.members)
}

// Publish sends data to every client subscribed to channel or to "all" and returns
// the number of successful deliveries. A client whose send fails is unregistered and closed.
func (h *Hub) Publish(channel string, data interface{}) int {
	if !ValidChannel(channel) {
		h.logger.Warn("publish to unknown channel", zap.String("channel", channel))
		return 0
	}

	h.dispatch.Lock()
	defer h.dispatch.Unlock()

	h.mu.RLock()
	targets := make([]Client, 0, len(h.members))
	for _, m := range h.members {
		if _, ok := m.channels[channel]; ok {
			targets = append(targets, m.client)
			continue
		}
		if _, ok := m.channels[ChannelAll]; ok {
			targets = append(targets, m.client)
		}
	}
	h.mu.RUnlock()

	msg := Message{
		Type:      "event",
		Channel:   channel,
		Data:      data,
		Timestamp: h.cfg.Now().UnixMilli(),
	}

	delivered := 0
	for _, c := range targets {
		if err := c.Send(msg); err != nil {
			h.logger.Warn("drop client", zap.String("client", c.ID()), zap.String("channel", channel), zap.Error(err))
			if h.remove(c.ID(), true) {
				_ = c.Close()
			}
			continue
		}
		delivered++
	}

	h.cfg.Metrics.Published(channel, delivered)
	return delivered
}
