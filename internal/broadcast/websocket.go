package broadcast

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type clientMessage struct {
	Type    string `json:"type"`
	Channel string `json:"channel"`
}

// wsClient serializes writes to one gorilla connection.
type wsClient struct {
	id           string
	conn         *websocket.Conn
	writeTimeout time.Duration

	mu     sync.Mutex
	closed bool
}

func newWSClient(conn *websocket.Conn, writeTimeout time.Duration) *wsClient {
	return &wsClient{
		id:           uuid.NewString(),
		conn:         conn,
		writeTimeout: writeTimeout,
	}
}

func (c *wsClient) ID() string { return c.id }

func (c *wsClient) Send(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("connection closed")
	}
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	if err := c.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

func (c *wsClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}

// Handler upgrades the request and serves the subscription protocol until the peer disconnects.
func (h *Hub) Handler() http.HandlerFunc {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.logger.Warn("websocket upgrade", zap.Error(err))
			return
		}
		// Hijacked connections keep the server's read deadline.
		_ = conn.SetReadDeadline(time.Time{})

		client := newWSClient(conn, h.cfg.WriteTimeout)
		if err := client.Send(Message{Type: "connected", ClientID: client.ID()}); err != nil {
			_ = client.Close()
			return
		}
		h.Register(client)
		defer func() {
			h.Unregister(client.ID())
			_ = client.Close()
		}()

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					h.logger.Debug("websocket read", zap.String("client", client.ID()), zap.Error(err))
				}
				return
			}
			reply := h.handleMessage(client.ID(), data)
			if err := client.Send(reply); err != nil {
				return
			}
		}
	}
}

func (h *Hub) handleMessage(id string, data []byte) Message {
	var msg clientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{Type: "error", Message: "invalid message"}
	}

	switch msg.Type {
	case "subscribe":
		if err := h.Subscribe(id, msg.Channel); err != nil {
			return Message{Type: "error", Message: fmt.Sprintf("%s: %s", err, msg.Channel)}
		}
		return Message{Type: "subscribed", Channel: msg.Channel}
	case "unsubscribe":
		if err := h.Unsubscribe(id, msg.Channel); err != nil {
			return Message{Type: "error", Message: fmt.Sprintf("%s: %s", err, msg.Channel)}
		}
		return Message{Type: "unsubscribed", Channel: msg.Channel}
	case "ping":
		return Message{Type: "pong"}
	default:
		return Message{Type: "error", Message: fmt.Sprintf("unknown message type: %s", msg.Type)}
	}
}
