package entity

import "time"

// ApprovalHistory records a single state transition of an expense. Entries
// are append-only and written in the same transaction as the expense update;
// they are the engine's outward trace of what happened and when.
type ApprovalHistory struct {
	ID         int64     `json:"id"`
	ExpenseID  string    `json:"expense_id"`
	ActorID    string    `json:"actor_id"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	Action     string    `json:"action"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// History action constants
const (
	HistoryActionSubmit  = "SUBMIT"
	HistoryActionApprove = "APPROVE"
	HistoryActionReject  = "REJECT"
	HistoryActionPay     = "PAY"
)
