// Package notifier delivers member notifications to an external webhook.
// Delivery is best effort: callers treat failures as log-worthy, not fatal.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hendrayp/komunitas-backend/internal/domain"
)

// Webhook posts notifications to a configured HTTP endpoint.
type Webhook struct {
	url        string
	httpClient *http.Client
	log        *slog.Logger
}

// New creates a webhook notifier. An empty URL produces a notifier that
// silently drops everything, which keeps local setups working without a
// delivery backend.
func New(url string, timeout time.Duration, logger *slog.Logger) *Webhook {
	return &Webhook{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.With("adapter", "notifier"),
	}
}

// Notify posts one notification.
func (w *Webhook) Notify(ctx context.Context, n domain.Notification) error {
	if w.url == "" {
		w.log.DebugContext(ctx, "notifier disabled, dropping notification",
			slog.Int64("member_id", n.MemberID))
		return nil
	}

	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("notifier: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notifier: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.doWithRetry(ctx, req, body)
	if err != nil {
		w.log.ErrorContext(ctx, "notification delivery failed",
			slog.Int64("member_id", n.MemberID), slog.String("error", err.Error()))
		return fmt.Errorf("notifier: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notifier: unexpected status %d", resp.StatusCode)
	}

	w.log.DebugContext(ctx, "notification delivered",
		slog.Int64("member_id", n.MemberID), slog.Int("status", resp.StatusCode))
	return nil
}

// doWithRetry executes the request with a single retry on 5xx or network
// errors. The body is re-supplied because the first attempt consumes it.
func (w *Webhook) doWithRetry(ctx context.Context, req *http.Request, body []byte) (*http.Response, error) {
	resp, err := w.httpClient.Do(req)

	shouldRetry := err != nil || (resp != nil && resp.StatusCode >= 500)
	if !shouldRetry {
		return resp, err
	}

	if ctx.Err() != nil {
		return resp, err
	}

	reason := "network error"
	if err == nil && resp != nil {
		reason = fmt.Sprintf("status %d", resp.StatusCode)
	}
	w.log.WarnContext(ctx, "notifier retry", slog.String("reason", reason))

	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	time.Sleep(500 * time.Millisecond)

	retryReq, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	retryReq.Header.Set("Content-Type", "application/json")

	return w.httpClient.Do(retryReq)
}
