package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/finly-app/expense-service/internal/application/port"
	"github.com/finly-app/expense-service/internal/domain/entity"
	"github.com/finly-app/expense-service/internal/infrastructure/persistence/sqlite"
)

// CompanyRepository implements port.CompanyRepository
type CompanyRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewCompanyRepository creates a new company repository
func NewCompanyRepository(db *sqlite.DB, logger *zap.Logger) port.CompanyRepository {
	return &CompanyRepository{
		db:     db,
		logger: logger,
	}
}

// GetByID retrieves a company by ID
func (r *CompanyRepository) GetByID(ctx context.Context, id string) (*entity.Company, error) {
	query := `SELECT id, name, base_currency, settings, created_at FROM companies WHERE id = ?`

	var (
		company  entity.Company
		settings []byte
	)

	err := r.db.Executor(ctx).QueryRowContext(ctx, query, id).Scan(
		&company.ID,
		&company.Name,
		&company.BaseCurrency,
		&settings,
		&company.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get company by ID", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get company: %w", err)
	}

	if len(settings) > 0 {
		if err := json.Unmarshal(settings, &company.Settings); err != nil {
			return nil, fmt.Errorf("invalid company settings: %w", err)
		}
	}

	return &company, nil
}
