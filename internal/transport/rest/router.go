package rest

import "net/http"

// Handlers groups everything the router mounts.
type Handlers struct {
	Health   *HealthHandler
	Tasks    *TaskHandler
	Ledger   *LedgerHandler
	Admin    *AdminHandler
	Callback *CallbackHandler
}

// NewRouter mounts all REST routes on a fresh mux. Authentication and the
// rest of the middleware chain wrap the returned handler in the app layer.
func NewRouter(h Handlers) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.Health.Health)
	mux.HandleFunc("GET /health/live", h.Health.Live)
	mux.HandleFunc("GET /health/ready", h.Health.Ready)

	mux.HandleFunc("GET /api/tasks", h.Tasks.List)
	mux.HandleFunc("GET /api/tasks/{id}", h.Tasks.Detail)
	mux.HandleFunc("POST /api/tasks/{id}/start", h.Tasks.Start)
	mux.HandleFunc("POST /api/tasks/{id}/complete", h.Tasks.Complete)
	mux.HandleFunc("POST /api/tasks/{id}/evidence", h.Tasks.Evidence)
	mux.HandleFunc("GET /api/members/me/stats", h.Tasks.Stats)

	mux.HandleFunc("GET /api/members/me/points", h.Ledger.Points)
	mux.HandleFunc("GET /api/members/me/points/history", h.Ledger.History)
	mux.HandleFunc("GET /api/members/me/transactions", h.Ledger.Transactions)
	mux.HandleFunc("POST /api/rewards/redeem", h.Ledger.Redeem)

	mux.HandleFunc("POST /api/verifications/callback", h.Callback.Receive)

	mux.HandleFunc("POST /api/admin/points", h.Admin.Points)
	mux.HandleFunc("POST /api/admin/submissions/{id}", h.Admin.SubmissionOverride)
	mux.HandleFunc("GET /api/admin/ledger/audit", h.Admin.Audit)
	mux.HandleFunc("POST /api/admin/members/{id}/sync-coins", h.Admin.SyncCoins)
	mux.HandleFunc("POST /api/admin/tasks", h.Admin.CreateTask)
	mux.HandleFunc("POST /api/admin/tasks/{id}/retire", h.Admin.RetireTask)
	mux.HandleFunc("GET /api/admin/boosts", h.Admin.ListBoosts)
	mux.HandleFunc("POST /api/admin/boosts", h.Admin.CreateBoost)

	return mux
}
