package notifications

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"zipcrack/internal/config"
)

const userAgent = "zipcrack/0.1.0"

// Event identifies a run milestone.
type Event string

const (
	EventRunStarted      Event = "run_started"
	EventPasswordFound   Event = "password_found"
	EventSearchExhausted Event = "search_exhausted"
	EventError           Event = "error"
	EventTest            Event = "test"
)

// Payload carries event details keyed by name. Values are rendered with %v.
type Payload map[string]any

// Service publishes run events.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	attempts := max(1, cfg.Notifications.RetryAttempts)

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		attempts: uint(attempts),
		delay:    250 * time.Millisecond,
		enabled: map[Event]bool{
			EventRunStarted:      cfg.Notifications.Started,
			EventPasswordFound:   cfg.Notifications.Found,
			EventSearchExhausted: cfg.Notifications.Exhausted,
			EventError:           cfg.Notifications.Errors,
			EventTest:            true,
		},
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	attempts uint
	delay    time.Duration
	enabled  map[Event]bool
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	if !n.enabled[event] {
		return nil
	}
	msg, ok := render(event, payload)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

func render(event Event, payload Payload) (message, bool) {
	archive := payload.text("archive")
	switch event {
	case EventRunStarted:
		body := fmt.Sprintf("Started search on %s", archive)
		if combos := payload.text("combinations"); combos != "" {
			body += fmt.Sprintf(" (%s combinations, %s workers)", combos, payload.textOr("workers", "?"))
		}
		return message{
			title: "zipcrack - Search Started",
			body:  body,
			tags:  []string{"zipcrack", "search", "started"},
		}, true
	case EventPasswordFound:
		body := fmt.Sprintf("🔓 Password found for %s", archive)
		if elapsed := payload.text("elapsed"); elapsed != "" {
			body += " in " + elapsed
		}
		if output := payload.text("output"); output != "" {
			body += "\nSaved to: " + output
		}
		return message{
			title:    "zipcrack - Password Found",
			body:     body,
			tags:     []string{"zipcrack", "search", "found"},
			priority: "high",
		}, true
	case EventSearchExhausted:
		body := fmt.Sprintf("Keyspace exhausted for %s without a match", archive)
		if attempts := payload.text("attempts"); attempts != "" {
			body += fmt.Sprintf(" (%s attempts)", attempts)
		}
		return message{
			title: "zipcrack - Not Found",
			body:  body,
			tags:  []string{"zipcrack", "search", "exhausted"},
		}, true
	case EventError:
		var builder strings.Builder
		builder.WriteString("❌ Error")
		if label := payload.text("context"); label != "" {
			builder.WriteString(" with ")
			builder.WriteString(label)
		}
		builder.WriteString(": ")
		builder.WriteString(payload.textOr("error", "unknown"))
		return message{
			title:    "zipcrack - Error",
			body:     builder.String(),
			tags:     []string{"zipcrack", "error", "alert"},
			priority: "high",
		}, true
	case EventTest:
		return message{
			title:    "zipcrack - Test",
			body:     "🧪 Notification system test",
			tags:     []string{"zipcrack", "test"},
			priority: "low",
		}, true
	default:
		return message{}, false
	}
}

func (n *ntfyService) send(ctx context.Context, msg message) error {
	return retry.Do(
		func() error { return n.post(ctx, msg) },
		retry.Context(ctx),
		retry.Attempts(n.attempts),
		retry.Delay(n.delay),
		retry.LastErrorOnly(true),
	)
}

func (n *ntfyService) post(ctx context.Context, msg message) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(msg.body))
	if err != nil {
		return retry.Unrecoverable(fmt.Errorf("build ntfy request: %w", err))
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if msg.title != "" {
		req.Header.Set("Title", msg.title)
	}
	if len(msg.tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.tags, ","))
	}
	if msg.priority != "" && msg.priority != "default" {
		req.Header.Set("Priority", msg.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return retry.Unrecoverable(err)
		}
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		err := fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return retry.Unrecoverable(err)
		}
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (p Payload) text(key string) string {
	return p.textOr(key, "")
}

func (p Payload) textOr(key, fallback string) string {
	value, ok := p[key]
	if !ok || value == nil {
		return fallback
	}
	text := strings.TrimSpace(fmt.Sprint(value))
	if text == "" {
		return fallback
	}
	return text
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
