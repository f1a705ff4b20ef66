package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"downconv/internal/config"
)

const (
	userAgent      = "downconv/0.1.0"
	defaultTimeout = 10 * time.Second
)

// Service publishes run notifications.
type Service interface {
	NotifyRunCompleted(ctx context.Context, kind string, succeeded, failed int, duration time.Duration) error
	NotifyRunAborted(ctx context.Context, kind, message string) error
	TestNotification(ctx context.Context) error
}

// NewService returns an ntfy publisher for the configured topic URL, or a
// service that does nothing when notifications are off.
func NewService(cfg *config.Config) Service {
	if cfg == nil || strings.TrimSpace(cfg.Notifications.NtfyTopic) == "" {
		return noopService{}
	}
	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &ntfyService{
		topicURL: strings.TrimSpace(cfg.Notifications.NtfyTopic),
		client:   &http.Client{Timeout: timeout},
	}
}

// message is one ntfy publication; the body is the plain-text message and
// the rest travels as headers.
type message struct {
	Title    string
	Body     string
	Tags     []string
	Priority string
}

func (m message) header() http.Header {
	h := http.Header{}
	h.Set("User-Agent", userAgent)
	h.Set("Content-Type", "text/plain; charset=utf-8")
	if m.Title != "" {
		h.Set("Title", m.Title)
	}
	if len(m.Tags) > 0 {
		h.Set("Tags", strings.Join(m.Tags, ","))
	}
	if m.Priority != "" {
		h.Set("Priority", m.Priority)
	}
	return h
}

// kindNoun returns the Italian name of a run kind and the matching
// past-participle ending.
func kindNoun(kind string) (noun, ending string) {
	switch kind {
	case "convert":
		return "Conversione", "a"
	case "download":
		return "Download", "o"
	default:
		return kind, "o"
	}
}

func completedMessage(kind string, succeeded, failed int, elapsed time.Duration) message {
	noun, end := kindNoun(kind)
	elapsed = max(elapsed.Round(time.Second), 0)
	m := message{
		Title: fmt.Sprintf("downconv - %s completat%s", noun, end),
		Body:  fmt.Sprintf("%d elementi completati in %s", succeeded, elapsed),
		Tags:  []string{"downconv", kind, "completed"},
	}
	if failed > 0 {
		m.Title += " con errori"
		m.Body = fmt.Sprintf("%d completati, %d falliti in %s", succeeded, failed, elapsed)
		m.Tags = append(m.Tags, "warning")
	}
	return m
}

func abortedMessage(kind, reason string) message {
	noun, end := kindNoun(kind)
	if reason = strings.TrimSpace(reason); reason == "" {
		reason = "errore sconosciuto"
	}
	return message{
		Title:    fmt.Sprintf("downconv - %s non avviat%s", noun, end),
		Body:     reason,
		Tags:     []string{"downconv", kind, "error"},
		Priority: "high",
	}
}

type ntfyService struct {
	topicURL string
	client   *http.Client
}

func (n *ntfyService) NotifyRunCompleted(ctx context.Context, kind string, succeeded, failed int, duration time.Duration) error {
	return n.publish(ctx, completedMessage(kind, succeeded, failed, duration))
}

func (n *ntfyService) NotifyRunAborted(ctx context.Context, kind, reason string) error {
	return n.publish(ctx, abortedMessage(kind, reason))
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.publish(ctx, message{
		Title:    "downconv - Test",
		Body:     "Notifiche configurate correttamente",
		Tags:     []string{"downconv", "test"},
		Priority: "low",
	})
}

func (n *ntfyService) publish(ctx context.Context, m message) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.topicURL, strings.NewReader(m.Body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header = m.header()

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("publish to ntfy: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy responded %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyRunCompleted(context.Context, string, int, int, time.Duration) error {
	return nil
}

func (noopService) NotifyRunAborted(context.Context, string, string) error { return nil }

func (noopService) TestNotification(context.Context) error { return nil }
