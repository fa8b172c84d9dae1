package rest

import (
	"time"

	"github.com/hendrayp/komunitas-backend/internal/domain"
	"github.com/hendrayp/komunitas-backend/internal/service/task"
)

type taskResponse struct {
	ID                int64      `json:"id"`
	Description       string     `json:"description"`
	TargetLink        string     `json:"target_link,omitempty"`
	BasePointValue    int64      `json:"base_point_value"`
	Status            string     `json:"status"`
	Strategy          string     `json:"strategy"`
	VerificationRules *string    `json:"verification_rules,omitempty"`
	PostedAt          time.Time  `json:"posted_at"`
	MemberStatus      string     `json:"member_status,omitempty"`
	Deadline          *time.Time `json:"deadline,omitempty"`
}

type submissionResponse struct {
	ID            int64      `json:"id"`
	MemberID      int64      `json:"member_id"`
	TaskID        int64      `json:"task_id"`
	Status        string     `json:"status"`
	StartedAt     time.Time  `json:"started_at"`
	VerifiedAt    *time.Time `json:"verified_at,omitempty"`
	EvidenceURL   *string    `json:"evidence_url,omitempty"`
	Note          *string    `json:"note,omitempty"`
	AdminNotes    *string    `json:"admin_notes,omitempty"`
	Confidence    *float64   `json:"confidence,omitempty"`
	ExtractedText *string    `json:"extracted_text,omitempty"`
}

type transactionResponse struct {
	ID            int64     `json:"id"`
	MemberID      int64     `json:"member_id"`
	Type          string    `json:"type"`
	EventType     string    `json:"event_type"`
	LoyaltyDelta  int64     `json:"loyalty_delta"`
	CoinDelta     int64     `json:"coin_delta"`
	Description   string    `json:"description"`
	Reference     string    `json:"reference,omitempty"`
	LoyaltyBefore int64     `json:"loyalty_before"`
	LoyaltyAfter  int64     `json:"loyalty_after"`
	CoinBefore    int64     `json:"coin_before"`
	CoinAfter     int64     `json:"coin_after"`
	CreatedAt     time.Time `json:"created_at"`
}

type summaryResponse struct {
	LoyaltyBalance int64                 `json:"loyalty_balance"`
	CoinBalance    int64                 `json:"coin_balance"`
	Consistent     bool                  `json:"consistent"`
	RecentTxns     []transactionResponse `json:"recent_transactions"`
	RecentSpends   []transactionResponse `json:"recent_spends"`
}

type historyResponse struct {
	Delta       int64     `json:"delta"`
	Description string    `json:"description"`
	EventType   string    `json:"event_type"`
	CreatedAt   time.Time `json:"created_at"`
}

type driftResponse struct {
	MemberID       int64 `json:"member_id"`
	LoyaltyPoint   int64 `json:"loyalty_point"`
	Coin           int64 `json:"coin"`
	LoyaltyFromLog int64 `json:"loyalty_from_log"`
	CoinFromLog    int64 `json:"coin_from_log"`
	InvariantOK    bool  `json:"invariant_ok"`
}

type boostEventResponse struct {
	ID        int64     `json:"id"`
	Key       string    `json:"key"`
	Name      string    `json:"name,omitempty"`
	Value     string    `json:"value"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
	CreatedAt time.Time `json:"created_at"`
}

type listResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

func toTaskResponse(v *task.TaskView) taskResponse {
	t := v.Task
	return taskResponse{
		ID:                t.ID,
		Description:       t.Description,
		TargetLink:        t.TargetLink,
		BasePointValue:    t.BasePointValue,
		Status:            t.Status.String(),
		Strategy:          t.Strategy.String(),
		VerificationRules: t.VerificationRules,
		PostedAt:          t.PostedAt,
		MemberStatus:      v.Status.String(),
		Deadline:          v.Deadline,
	}
}

func toSubmissionResponse(s *domain.Submission) submissionResponse {
	return submissionResponse{
		ID:            s.ID,
		MemberID:      s.MemberID,
		TaskID:        s.TaskID,
		Status:        s.Status.String(),
		StartedAt:     s.StartedAt,
		VerifiedAt:    s.VerifiedAt,
		EvidenceURL:   s.EvidenceURL,
		Note:          s.Note,
		AdminNotes:    s.AdminNotes,
		Confidence:    s.Confidence,
		ExtractedText: s.ExtractedText,
	}
}

func toTransactionResponse(e *domain.TransactionEntry) transactionResponse {
	return transactionResponse{
		ID:            e.ID,
		MemberID:      e.MemberID,
		Type:          e.Type.String(),
		EventType:     e.EventType.String(),
		LoyaltyDelta:  e.LoyaltyDelta,
		CoinDelta:     e.CoinDelta,
		Description:   e.Description,
		Reference:     e.Reference,
		LoyaltyBefore: e.LoyaltyBefore,
		LoyaltyAfter:  e.LoyaltyAfter,
		CoinBefore:    e.CoinBefore,
		CoinAfter:     e.CoinAfter,
		CreatedAt:     e.CreatedAt,
	}
}

func toTransactionResponses(entries []*domain.TransactionEntry) []transactionResponse {
	out := make([]transactionResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toTransactionResponse(e))
	}
	return out
}

func toBoostEventResponse(e *domain.BoostEvent) boostEventResponse {
	return boostEventResponse{
		ID:        e.ID,
		Key:       e.Key,
		Name:      e.Name,
		Value:     e.Value,
		StartsAt:  e.StartsAt,
		EndsAt:    e.EndsAt,
		CreatedAt: e.CreatedAt,
	}
}
