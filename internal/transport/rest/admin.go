package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/hendrayp/komunitas-backend/internal/domain"
	"github.com/hendrayp/komunitas-backend/internal/service/boost"
	"github.com/hendrayp/komunitas-backend/internal/service/ledger"
	"github.com/hendrayp/komunitas-backend/internal/service/task"
	"github.com/hendrayp/komunitas-backend/pkg/ctxutil"
)

type adminLedgerService interface {
	Award(ctx context.Context, input ledger.AwardInput) (*domain.TransactionEntry, error)
	Correct(ctx context.Context, input ledger.CorrectInput) (*domain.TransactionEntry, error)
	SyncCoins(ctx context.Context, memberID int64) (*domain.TransactionEntry, error)
	Audit(ctx context.Context) ([]*domain.LedgerDrift, error)
}

type adminTaskService interface {
	CreateTask(ctx context.Context, input task.CreateTaskInput) (*domain.TaskDefinition, error)
	RetireTask(ctx context.Context, taskID int64) error
	Reject(ctx context.Context, submissionID int64, notes string) (*domain.Submission, error)
	ReceiveVerificationResult(ctx context.Context, result domain.VerificationResult) (*domain.Submission, error)
}

type boostService interface {
	CreateEvent(ctx context.Context, input boost.CreateEventInput) (*domain.BoostEvent, error)
	ListEvents(ctx context.Context) ([]*domain.BoostEvent, error)
}

// AdminHandler serves moderator endpoints. Every operation checks the admin
// flag; the services enforce it again on their own mutations.
type AdminHandler struct {
	ledger adminLedgerService
	tasks  adminTaskService
	boosts boostService
	log    *slog.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(ledgerSvc adminLedgerService, tasks adminTaskService, boosts boostService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		ledger: ledgerSvc,
		tasks:  tasks,
		boosts: boosts,
		log:    logger.With("handler", "admin"),
	}
}

type adminPointsRequest struct {
	MemberID     int64  `json:"member_id"`
	Action       string `json:"action"` // award or correct
	Points       int64  `json:"points"`
	MirrorToCoin bool   `json:"mirror_to_coin"`
	EventType    string `json:"event_type"`
	LoyaltyDelta int64  `json:"loyalty_delta"`
	CoinDelta    int64  `json:"coin_delta"`
	Description  string `json:"description"`
	Reference    string `json:"reference"`
}

// Points handles POST /api/admin/points: manual awards and corrections.
func (h *AdminHandler) Points(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	var req adminPointsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var (
		entry *domain.TransactionEntry
		err   error
	)
	switch req.Action {
	case "award":
		eventType := domain.EventType(req.EventType)
		if eventType == "" {
			eventType = domain.EventTypeAdminManual
		}
		entry, err = h.ledger.Award(r.Context(), ledger.AwardInput{
			MemberID:     req.MemberID,
			Points:       req.Points,
			MirrorToCoin: req.MirrorToCoin,
			EventType:    eventType,
			Description:  req.Description,
			Reference:    req.Reference,
		})
	case "correct":
		entry, err = h.ledger.Correct(r.Context(), ledger.CorrectInput{
			MemberID:     req.MemberID,
			LoyaltyDelta: req.LoyaltyDelta,
			CoinDelta:    req.CoinDelta,
			Description:  req.Description,
			Reference:    req.Reference,
		})
	default:
		writeError(w, http.StatusBadRequest, "action must be award or correct")
		return
	}
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(entry))
}

type submissionOverrideRequest struct {
	Action string `json:"action"` // approve or reject
	Notes  string `json:"notes"`
}

// SubmissionOverride handles POST /api/admin/submissions/{id}. Approval goes
// through the same path as a reviewer pass, so the payout logic is shared.
func (h *AdminHandler) SubmissionOverride(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	submissionID, ok := pathID(w, r)
	if !ok {
		return
	}

	var req submissionOverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var (
		sub *domain.Submission
		err error
	)
	switch req.Action {
	case "approve":
		sub, err = h.tasks.ReceiveVerificationResult(r.Context(), domain.VerificationResult{
			SubmissionID:  submissionID,
			Confidence:    1,
			ExtractedText: req.Notes,
			Passed:        true,
		})
	case "reject":
		sub, err = h.tasks.Reject(r.Context(), submissionID, req.Notes)
	default:
		writeError(w, http.StatusBadRequest, "action must be approve or reject")
		return
	}
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSubmissionResponse(sub))
}

// Audit handles GET /api/admin/ledger/audit.
func (h *AdminHandler) Audit(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	drifts, err := h.ledger.Audit(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	items := make([]driftResponse, 0, len(drifts))
	for _, d := range drifts {
		items = append(items, driftResponse{
			MemberID:       d.MemberID,
			LoyaltyPoint:   d.LoyaltyPoint,
			Coin:           d.Coin,
			LoyaltyFromLog: d.LoyaltyFromLog,
			CoinFromLog:    d.CoinFromLog,
			InvariantOK:    d.InvariantOK,
		})
	}
	writeJSON(w, http.StatusOK, listResponse[driftResponse]{Items: items, Total: len(items)})
}

// SyncCoins handles POST /api/admin/members/{id}/sync-coins.
func (h *AdminHandler) SyncCoins(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	memberID, ok := pathID(w, r)
	if !ok {
		return
	}

	entry, err := h.ledger.SyncCoins(r.Context(), memberID)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	if entry == nil {
		// Already in sync, nothing written.
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(entry))
}

type createTaskRequest struct {
	Description       string  `json:"description"`
	TargetLink        string  `json:"target_link"`
	BasePointValue    int64   `json:"base_point_value"`
	Strategy          string  `json:"strategy"`
	VerificationRules *string `json:"verification_rules"`
}

// CreateTask handles POST /api/admin/tasks.
func (h *AdminHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.tasks.CreateTask(r.Context(), task.CreateTaskInput{
		Description:       req.Description,
		TargetLink:        req.TargetLink,
		BasePointValue:    req.BasePointValue,
		Strategy:          domain.VerificationStrategy(req.Strategy),
		VerificationRules: req.VerificationRules,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTaskResponse(&task.TaskView{
		Task:   created,
		Status: domain.SubmissionStatusAvailable,
	}))
}

// RetireTask handles POST /api/admin/tasks/{id}/retire.
func (h *AdminHandler) RetireTask(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	taskID, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.tasks.RetireTask(r.Context(), taskID); err != nil {
		handleError(h.log, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type createBoostRequest struct {
	Key      string    `json:"key"`
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}

// CreateBoost handles POST /api/admin/boosts.
func (h *AdminHandler) CreateBoost(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	var req createBoostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	event, err := h.boosts.CreateEvent(r.Context(), boost.CreateEventInput{
		Key:      req.Key,
		Name:     req.Name,
		Value:    req.Value,
		StartsAt: req.StartsAt,
		EndsAt:   req.EndsAt,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBoostEventResponse(event))
}

// ListBoosts handles GET /api/admin/boosts.
func (h *AdminHandler) ListBoosts(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	events, err := h.boosts.ListEvents(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	items := make([]boostEventResponse, 0, len(events))
	for _, e := range events {
		items = append(items, toBoostEventResponse(e))
	}
	writeJSON(w, http.StatusOK, listResponse[boostEventResponse]{Items: items, Total: len(items)})
}

func (h *AdminHandler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if !ctxutil.IsAdmin(r.Context()) {
		writeError(w, http.StatusForbidden, "admin access required")
		return false
	}
	return true
}
