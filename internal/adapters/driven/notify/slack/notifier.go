package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/receiptsync/internal/core/domain"
	"github.com/custodia-labs/receiptsync/internal/core/ports/driven"
	"github.com/custodia-labs/receiptsync/internal/logger"
)

// Ensure Notifier implements the interface.
var _ driven.Notifier = (*Notifier)(nil)

const (
	// DefaultTimeout bounds each webhook request.
	DefaultTimeout = 10 * time.Second

	// debugPreviewLimit truncates the payload preview printed in debug mode.
	debugPreviewLimit = 2000

	// errorBodyLimit truncates the response body quoted in errors.
	errorBodyLimit = 512
)

// Notifier posts change reports to a Slack incoming webhook.
type Notifier struct {
	webhookURL string
	client     *http.Client
	debug      io.Writer
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithHTTPClient replaces the HTTP client (useful for testing).
func WithHTTPClient(client *http.Client) Option {
	return func(n *Notifier) {
		n.client = client
	}
}

// WithDebug prints every payload to w before it is sent.
func WithDebug(w io.Writer) Option {
	return func(n *Notifier) {
		n.debug = w
	}
}

// NewNotifier creates a notifier for the webhook URL.
func NewNotifier(webhookURL string, opts ...Option) (*Notifier, error) {
	if webhookURL == "" {
		return nil, fmt.Errorf("%w: slack webhook url not set", domain.ErrInvalidInput)
	}
	n := &Notifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

// Notify posts the report. Empty reports are not sent.
// If Slack rejects the Block Kit payload, the plain-text rendering is
// posted instead; an error is returned only when both attempts fail.
func (n *Notifier) Notify(ctx context.Context, report domain.Report) error {
	if report.Empty() {
		logger.Debug("slack: nothing to report")
		return nil
	}

	err := n.post(ctx, buildPayload(report))
	if err == nil {
		logger.Debug("slack: report sent (%d items)", report.Count)
		return nil
	}
	logger.Warn("slack: block payload rejected: %v", err)

	if fallbackErr := n.post(ctx, plainPayload(report)); fallbackErr != nil {
		return errors.Join(err, fmt.Errorf("plain-text fallback: %w", fallbackErr))
	}
	logger.Info("slack: plain-text fallback sent")
	return nil
}

func (n *Notifier) post(ctx context.Context, p payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}
	if n.debug != nil {
		preview := string(body)
		if len(preview) > debugPreviewLimit {
			preview = preview[:debugPreviewLimit]
		}
		fmt.Fprintf(n.debug, "[Slack] payload preview:\n%s\n", preview)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send slack notification: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return fmt.Errorf("slack responded %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}
