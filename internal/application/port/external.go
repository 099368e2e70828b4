package port

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finly-app/expense-service/internal/domain/entity"
)

// Conversion is the result of converting an amount between currencies.
type Conversion struct {
	Value     decimal.Decimal
	Rate      decimal.Decimal
	Timestamp time.Time
}

// CurrencyConverter converts an amount into another currency. Retry and
// fallback policy live behind this boundary, not in the engine.
type CurrencyConverter interface {
	Convert(ctx context.Context, amount decimal.Decimal, from, to string) (Conversion, error)
}

// TokenIssuer mints access tokens for authenticated users.
type TokenIssuer interface {
	Issue(user *entity.User) (string, error)
}
