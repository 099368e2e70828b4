package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CompanySettings holds the approval-related knobs of a company.
type CompanySettings struct {
	// AutoApprovalLimit is the base-currency threshold below which an expense
	// with no matching rule is approved without any flow.
	AutoApprovalLimit decimal.Decimal `json:"auto_approval_limit"`
}

// Company is read-only to the engine; it supplies the base currency and the
// auto-approval limit.
type Company struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	BaseCurrency string          `json:"base_currency"`
	Settings     CompanySettings `json:"settings"`
	CreatedAt    time.Time       `json:"created_at"`
}
