package currency

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/finly-app/expense-service/internal/application/port"
	"github.com/finly-app/expense-service/internal/domain/approval"
)

// StaticConverter converts amounts using a fixed rate table loaded from
// configuration. Rates are keyed "FROM/TO"; the inverse pair is derived when
// only one direction is configured.
type StaticConverter struct {
	rates  map[string]decimal.Decimal
	logger *zap.Logger
}

// NewStaticConverter builds a converter from a rate table of string decimals.
func NewStaticConverter(rates map[string]string, logger *zap.Logger) (*StaticConverter, error) {
	parsed := make(map[string]decimal.Decimal, len(rates))
	for pair, raw := range rates {
		rate, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid exchange rate for %s: %w", pair, err)
		}
		if !rate.IsPositive() {
			return nil, fmt.Errorf("exchange rate for %s must be positive", pair)
		}
		parsed[pair] = rate
	}
	return &StaticConverter{rates: parsed, logger: logger}, nil
}

// Convert converts an amount between currencies. Base-currency amounts pass
// through with a rate of 1.
func (c *StaticConverter) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (port.Conversion, error) {
	rate, err := c.rate(from, to)
	if err != nil {
		return port.Conversion{}, err
	}

	return port.Conversion{
		Value:     amount.Mul(rate).Round(2),
		Rate:      rate,
		Timestamp: time.Now(),
	}, nil
}

func (c *StaticConverter) rate(from, to string) (decimal.Decimal, error) {
	if from == to {
		return decimal.NewFromInt(1), nil
	}
	if rate, ok := c.rates[from+"/"+to]; ok {
		return rate, nil
	}
	if inverse, ok := c.rates[to+"/"+from]; ok {
		return decimal.NewFromInt(1).DivRound(inverse, 8), nil
	}
	c.logger.Warn("No exchange rate configured", zap.String("from", from), zap.String("to", to))
	return decimal.Zero, fmt.Errorf("no exchange rate configured for %s/%s: %w", from, to, approval.ErrConfiguration)
}

var _ port.CurrencyConverter = (*StaticConverter)(nil)
