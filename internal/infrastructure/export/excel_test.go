package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/finly-app/expense-service/internal/domain/entity"
)

func TestWriteReport(t *testing.T) {
	submitted := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	expenses := []*entity.Expense{
		{
			ID:          "exp-1",
			SubmittedBy: "user-1",
			Description: "Client dinner",
			Category:    entity.CategoryMeal,
			Amount:      entity.Money{Value: decimal.RequireFromString("80.50"), Currency: "EUR"},
			AmountInBaseCurrency: entity.BaseAmount{
				Value:        decimal.RequireFromString("88.55"),
				ExchangeRate: decimal.RequireFromString("1.10"),
			},
			Status:      entity.StatusApproved,
			SubmittedAt: &submitted,
		},
		{
			ID:          "exp-2",
			SubmittedBy: "user-2",
			Description: "Taxi",
			Category:    entity.CategoryTravel,
			Amount:      entity.Money{Value: decimal.RequireFromString("20"), Currency: "USD"},
			AmountInBaseCurrency: entity.BaseAmount{
				Value:        decimal.RequireFromString("20"),
				ExchangeRate: decimal.NewFromInt(1),
			},
			Status: entity.StatusDraft,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, NewExcelWriter(zap.NewNop()).WriteReport(&buf, expenses))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(reportSheet)
	require.NoError(t, err)
	// header + 2 expenses + totals row
	require.Len(t, rows, 4)

	assert.Equal(t, "ID", rows[0][0])
	assert.Equal(t, "exp-1", rows[1][0])
	assert.Equal(t, "88.55", rows[1][6])
	assert.Equal(t, "2026-03-01 09:30", rows[1][8])
	assert.Equal(t, "exp-2", rows[2][0])

	assert.Equal(t, "Total", rows[3][5])
	assert.Equal(t, "108.55", rows[3][6])
}

func TestWriteReport_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewExcelWriter(zap.NewNop()).WriteReport(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(reportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Total", rows[1][5])
}
