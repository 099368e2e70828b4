package export

import (
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/finly-app/expense-service/internal/domain/entity"
)

// ExcelWriter renders expense reports as xlsx workbooks.
type ExcelWriter struct {
	logger *zap.Logger
}

// NewExcelWriter creates a new Excel report writer
func NewExcelWriter(logger *zap.Logger) *ExcelWriter {
	return &ExcelWriter{logger: logger}
}

const reportSheet = "Expenses"

var reportHeaders = []string{
	"ID", "Submitted By", "Description", "Category",
	"Amount", "Currency", "Base Amount", "Status",
	"Submitted At", "Approved At", "Paid At",
}

// WriteReport writes the given expenses as a spreadsheet to w, one row per
// expense with a totals row at the bottom.
func (ew *ExcelWriter) WriteReport(w io.Writer, expenses []*entity.Expense) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(reportSheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		ew.logger.Warn("Failed to delete default sheet", zap.Error(err))
	}

	for col, header := range reportHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to build header cell name: %w", err)
		}
		ew.setCell(f, cell, header)
	}

	total := decimal.Zero
	for i, expense := range expenses {
		row := i + 2
		values := []interface{}{
			expense.ID,
			expense.SubmittedBy,
			expense.Description,
			expense.Category,
			expense.Amount.Value.String(),
			expense.Amount.Currency,
			expense.AmountInBaseCurrency.Value.String(),
			expense.Status,
			formatTime(expense.SubmittedAt),
			formatTime(expense.ApprovedAt),
			formatTime(expense.PaidAt),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return fmt.Errorf("failed to build cell name: %w", err)
			}
			ew.setCell(f, cell, value)
		}
		total = total.Add(expense.AmountInBaseCurrency.Value)
	}

	totalRow := len(expenses) + 2
	totalLabel, err := excelize.CoordinatesToCellName(6, totalRow)
	if err != nil {
		return fmt.Errorf("failed to build total cell name: %w", err)
	}
	totalValue, err := excelize.CoordinatesToCellName(7, totalRow)
	if err != nil {
		return fmt.Errorf("failed to build total cell name: %w", err)
	}
	ew.setCell(f, totalLabel, "Total")
	ew.setCell(f, totalValue, total.String())

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	ew.logger.Info("Expense report written", zap.Int("rows", len(expenses)))
	return nil
}

func (ew *ExcelWriter) setCell(f *excelize.File, cell string, value interface{}) {
	if err := f.SetCellValue(reportSheet, cell, value); err != nil {
		ew.logger.Warn("Failed to set cell value",
			zap.String("cell", cell),
			zap.Error(err))
	}
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}
