// Package verifier dispatches screenshot evidence to the external AI
// reviewer. The reviewer answers asynchronously through the verification
// callback route, so Dispatch only confirms that the job was accepted.
package verifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// DispatchRequest is the job payload handed to the reviewer.
type DispatchRequest struct {
	SubmissionID      int64   `json:"submission_id"`
	EvidenceURL       string  `json:"evidence_url"`
	VerificationRules *string `json:"verification_rules,omitempty"`
}

// Webhook submits verification jobs to a configured HTTP endpoint.
type Webhook struct {
	url        string
	httpClient *http.Client
	log        *slog.Logger
}

// New creates a webhook verifier dispatcher.
func New(url string, timeout time.Duration, logger *slog.Logger) *Webhook {
	return &Webhook{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.With("adapter", "verifier"),
	}
}

// Dispatch submits one verification job. A 2xx answer means the reviewer
// accepted the job; the verdict arrives later via callback.
func (w *Webhook) Dispatch(ctx context.Context, job DispatchRequest) error {
	if w.url == "" {
		return fmt.Errorf("verifier: no reviewer endpoint configured")
	}

	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("verifier: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("verifier: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.doWithRetry(ctx, req, body)
	if err != nil {
		w.log.ErrorContext(ctx, "verification dispatch failed",
			slog.Int64("submission_id", job.SubmissionID), slog.String("error", err.Error()))
		return fmt.Errorf("verifier: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("verifier: unexpected status %d", resp.StatusCode)
	}

	w.log.InfoContext(ctx, "verification job dispatched",
		slog.Int64("submission_id", job.SubmissionID), slog.Int("status", resp.StatusCode))
	return nil
}

// doWithRetry executes the request with a single retry on 5xx or network errors.
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
	w.log.WarnContext(ctx, "verifier retry", slog.String("reason", reason))

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
