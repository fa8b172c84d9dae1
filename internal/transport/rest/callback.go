package rest

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hendrayp/komunitas-backend/internal/domain"
)

// CallbackTokenHeader authenticates the AI reviewer callback.
const CallbackTokenHeader = "X-Callback-Token"

type verificationReceiver interface {
	ReceiveVerificationResult(ctx context.Context, result domain.VerificationResult) (*domain.Submission, error)
}

// CallbackHandler receives verdicts from the external AI reviewer.
type CallbackHandler struct {
	svc   verificationReceiver
	token string
	log   *slog.Logger
}

// NewCallbackHandler creates a CallbackHandler. The token is shared with the
// reviewer out of band and must be non-empty.
func NewCallbackHandler(svc verificationReceiver, token string, logger *slog.Logger) *CallbackHandler {
	return &CallbackHandler{svc: svc, token: token, log: logger.With("handler", "callback")}
}

type callbackRequest struct {
	SubmissionID  int64   `json:"submission_id"`
	Passed        bool    `json:"passed"`
	Confidence    float64 `json:"confidence"`
	ExtractedText string  `json:"extracted_text"`
}

// Receive handles POST /api/verifications/callback. Delivery is
// at-least-once: a verdict for an already finalized submission returns 200
// with the stored state so the reviewer stops retrying.
func (h *CallbackHandler) Receive(w http.ResponseWriter, r *http.Request) {
	provided := r.Header.Get(CallbackTokenHeader)
	if h.token == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(h.token)) != 1 {
		writeError(w, http.StatusUnauthorized, "invalid callback token")
		return
	}

	var req callbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sub, err := h.svc.ReceiveVerificationResult(r.Context(), domain.VerificationResult{
		SubmissionID:  req.SubmissionID,
		Passed:        req.Passed,
		Confidence:    req.Confidence,
		ExtractedText: req.ExtractedText,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSubmissionResponse(sub))
}
