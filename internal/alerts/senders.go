package alerts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/smtp"
	"strings"
	"time"

	"hookScope/internal/model"
)

const defaultTelegramAPI = "https://api.telegram.org"

// TelegramSender posts alerts through the Bot API sendMessage method.
type TelegramSender struct {
	BotToken string
	BaseURL  string
	Client   *http.Client
}

func (s *TelegramSender) Send(ctx context.Context, sub Subscription, alert model.WhaleAlert) error {
	if s.BotToken == "" {
		return fmt.Errorf("telegram bot token not configured")
	}
	base := s.BaseURL
	if base == "" {
		base = defaultTelegramAPI
	}
	url := strings.TrimRight(base, "/") + "/bot" + s.BotToken + "/sendMessage"
	body := map[string]interface{}{
		"chat_id": sub.Config["chatId"],
		"text":    FormatText(alert),
	}
	return postJSON(ctx, s.Client, url, body)
}

// DiscordSender posts alerts to a Discord incoming webhook.
type DiscordSender struct {
	Client *http.Client
}

func (s *DiscordSender) Send(ctx context.Context, sub Subscription, alert model.WhaleAlert) error {
	body := map[string]interface{}{
		"content": FormatText(alert),
	}
	return postJSON(ctx, s.Client, sub.Config["webhookUrl"], body)
}

// WebhookSender posts the alert JSON to an arbitrary URL.
type WebhookSender struct {
	Client *http.Client
}

func (s *WebhookSender) Send(ctx context.Context, sub Subscription, alert model.WhaleAlert) error {
	return postJSON(ctx, s.Client, sub.Config["url"], alert)
}

// EmailSender delivers alerts over SMTP.
type EmailSender struct {
	Addr     string
	From     string
	Username string
	Password string
}

func (s *EmailSender) Send(ctx context.Context, sub Subscription, alert model.WhaleAlert) error {
	if s.Addr == "" {
		return fmt.Errorf("smtp address not configured")
	}
	to := sub.Config["address"]

	var auth smtp.Auth
	if s.Username != "" {
		host := s.Addr
		if idx := strings.LastIndex(host, ":"); idx >= 0 {
			host = host[:idx]
		}
		auth = smtp.PlainAuth("", s.Username, s.Password, host)
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", s.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: [%s] %s\r\n", strings.ToUpper(string(alert.Severity)), alert.Type)
	fmt.Fprintf(&msg, "Date: %s\r\n\r\n", alert.CreatedAt.UTC().Format(time.RFC1123Z))
	msg.WriteString(FormatText(alert))
	msg.WriteString("\r\n")

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(s.Addr, auth, s.From, []string{to}, msg.Bytes())
	}()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send mail: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// FormatText renders an alert as a single human-readable line.
func FormatText(alert model.WhaleAlert) string {
	return fmt.Sprintf("[%s] %s", strings.ToUpper(string(alert.Severity)), alert.Message)
}

func postJSON(ctx context.Context, client *http.Client, url string, body interface{}) error {
	if url == "" {
		return fmt.Errorf("missing delivery url")
	}
	if client == nil {
		client = http.DefaultClient
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("post: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
