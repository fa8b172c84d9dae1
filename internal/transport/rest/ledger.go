package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hendrayp/komunitas-backend/internal/domain"
	"github.com/hendrayp/komunitas-backend/internal/service/ledger"
	"github.com/hendrayp/komunitas-backend/pkg/ctxutil"
)

// ledgerService defines the member-facing ledger operations.
type ledgerService interface {
	Summary(ctx context.Context, memberID int64) (*domain.PointsSummary, error)
	History(ctx context.Context, memberID int64, currency domain.Currency, limit, offset int) ([]*domain.HistoryEntry, int, error)
	ListTransactions(ctx context.Context, memberID int64, limit, offset int) ([]*domain.TransactionEntry, int, error)
	Redeem(ctx context.Context, input ledger.RedeemInput) (*domain.TransactionEntry, error)
}

// LedgerHandler serves the member points endpoints.
type LedgerHandler struct {
	svc ledgerService
	log *slog.Logger
}

// NewLedgerHandler creates a LedgerHandler.
func NewLedgerHandler(svc ledgerService, logger *slog.Logger) *LedgerHandler {
	return &LedgerHandler{svc: svc, log: logger.With("handler", "ledger")}
}

// Points handles GET /api/members/me/points.
func (h *LedgerHandler) Points(w http.ResponseWriter, r *http.Request) {
	memberID, ok := requireMember(w, r)
	if !ok {
		return
	}

	summary, err := h.svc.Summary(r.Context(), memberID)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, summaryResponse{
		LoyaltyBalance: summary.Member.LoyaltyPoint,
		CoinBalance:    summary.Member.Coin,
		Consistent:     summary.Consistent,
		RecentTxns:     toTransactionResponses(summary.RecentTxns),
		RecentSpends:   toTransactionResponses(summary.RecentSpends),
	})
}

// History handles GET /api/members/me/points/history?currency=COIN.
func (h *LedgerHandler) History(w http.ResponseWriter, r *http.Request) {
	memberID, ok := requireMember(w, r)
	if !ok {
		return
	}

	currency := domain.Currency(r.URL.Query().Get("currency"))
	entries, total, err := h.svc.History(r.Context(), memberID, currency,
		queryInt(r, "limit", 50), queryInt(r, "offset", 0))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	items := make([]historyResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, historyResponse{
			Delta:       e.Delta,
			Description: e.Description,
			EventType:   e.EventType.String(),
			CreatedAt:   e.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, listResponse[historyResponse]{Items: items, Total: total})
}

// Transactions handles GET /api/members/me/transactions.
func (h *LedgerHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	memberID, ok := requireMember(w, r)
	if !ok {
		return
	}

	entries, total, err := h.svc.ListTransactions(r.Context(), memberID,
		queryInt(r, "limit", 50), queryInt(r, "offset", 0))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, listResponse[transactionResponse]{
		Items: toTransactionResponses(entries),
		Total: total,
	})
}

type redeemRequest struct {
	Coins       int64  `json:"coins"`
	Description string `json:"description"`
	Reference   string `json:"reference"`
}

// Redeem handles POST /api/rewards/redeem.
func (h *LedgerHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	memberID, ok := requireMember(w, r)
	if !ok {
		return
	}

	var req redeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.svc.Redeem(r.Context(), ledger.RedeemInput{
		MemberID:    memberID,
		Coins:       req.Coins,
		Description: req.Description,
		Reference:   req.Reference,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(entry))
}

func requireMember(w http.ResponseWriter, r *http.Request) (int64, bool) {
	memberID, ok := ctxutil.MemberIDFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return 0, false
	}
	return memberID, true
}
