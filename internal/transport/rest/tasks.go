package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/hendrayp/komunitas-backend/internal/domain"
	"github.com/hendrayp/komunitas-backend/internal/service/task"
)

// taskService defines the member-facing operations needed by TaskHandler.
type taskService interface {
	ListTasks(ctx context.Context, filter task.ListFilter) ([]*task.TaskView, int, error)
	GetTask(ctx context.Context, taskID int64) (*task.TaskView, error)
	StartAttempt(ctx context.Context, taskID int64) (*domain.Submission, error)
	CompleteAuto(ctx context.Context, taskID int64) (*domain.Submission, error)
	SubmitEvidence(ctx context.Context, taskID int64, evidenceURL, note string) (*domain.Submission, error)
	GetStats(ctx context.Context) (*domain.TaskStats, error)
}

// TaskHandler serves the member task endpoints.
type TaskHandler struct {
	svc taskService
	log *slog.Logger
}

// NewTaskHandler creates a TaskHandler.
func NewTaskHandler(svc taskService, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{svc: svc, log: logger.With("handler", "tasks")}
}

// List handles GET /api/tasks?strategy=&search=&limit=&offset=.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := task.ListFilter{
		Strategy: domain.VerificationStrategy(r.URL.Query().Get("strategy")),
		Search:   r.URL.Query().Get("search"),
		Limit:    queryInt(r, "limit", 50),
		Offset:   queryInt(r, "offset", 0),
	}

	views, total, err := h.svc.ListTasks(r.Context(), filter)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	items := make([]taskResponse, 0, len(views))
	for _, v := range views {
		items = append(items, toTaskResponse(v))
	}
	writeJSON(w, http.StatusOK, listResponse[taskResponse]{Items: items, Total: total})
}

// Detail handles GET /api/tasks/{id}.
func (h *TaskHandler) Detail(w http.ResponseWriter, r *http.Request) {
	taskID, ok := pathID(w, r)
	if !ok {
		return
	}

	view, err := h.svc.GetTask(r.Context(), taskID)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	resp := struct {
		taskResponse
		Submission *submissionResponse `json:"submission,omitempty"`
	}{taskResponse: toTaskResponse(view)}
	if view.Submission != nil {
		sub := toSubmissionResponse(view.Submission)
		resp.Submission = &sub
	}
	writeJSON(w, http.StatusOK, resp)
}

// Start handles POST /api/tasks/{id}/start.
func (h *TaskHandler) Start(w http.ResponseWriter, r *http.Request) {
	taskID, ok := pathID(w, r)
	if !ok {
		return
	}

	sub, err := h.svc.StartAttempt(r.Context(), taskID)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSubmissionResponse(sub))
}

// Complete handles POST /api/tasks/{id}/complete for AUTO tasks.
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	taskID, ok := pathID(w, r)
	if !ok {
		return
	}

	sub, err := h.svc.CompleteAuto(r.Context(), taskID)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSubmissionResponse(sub))
}

type evidenceRequest struct {
	EvidenceURL string `json:"evidence_url"`
	Note        string `json:"note"`
}

// Evidence handles POST /api/tasks/{id}/evidence for SCREENSHOT tasks.
func (h *TaskHandler) Evidence(w http.ResponseWriter, r *http.Request) {
	taskID, ok := pathID(w, r)
	if !ok {
		return
	}

	var req evidenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sub, err := h.svc.SubmitEvidence(r.Context(), taskID, req.EvidenceURL, req.Note)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSubmissionResponse(sub))
}

// Stats handles GET /api/members/me/stats.
func (h *TaskHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.GetStats(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// pathID extracts the {id} path segment as a positive int64.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}
