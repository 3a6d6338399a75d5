package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Faitltd/FAIT-sub008/internal/model"
	"github.com/Faitltd/FAIT-sub008/pkg/apperr"
)

// WarrantyTypeRepository serves reference data. Rows change rarely, the
// warranty service fronts this with a redis cache.
type WarrantyTypeRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewWarrantyTypeRepository(db *pgxpool.Pool, logger *zap.Logger) *WarrantyTypeRepository {
	return &WarrantyTypeRepository{db: db, logger: logger}
}

func (r *WarrantyTypeRepository) FindByID(ctx context.Context, id int) (*model.WarrantyType, error) {
	query := `
        SELECT id, name, description, duration_days, premium_duration_days
        FROM warranty_types
        WHERE id = $1
    `
	var t model.WarrantyType
	err := r.db.QueryRow(ctx, query, id).Scan(
		&t.ID,
		&t.Name,
		&t.Description,
		&t.DurationDays,
		&t.PremiumDurationDays,
	)
	if err != nil {
		return nil, apperr.FromScan(err, "warranty type", id)
	}
	return &t, nil
}

func (r *WarrantyTypeRepository) List(ctx context.Context) ([]model.WarrantyType, error) {
	query := `
        SELECT id, name, description, duration_days, premium_duration_days
        FROM warranty_types
        ORDER BY duration_days ASC
    `
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to query warranty types", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	types := []model.WarrantyType{}
	for rows.Next() {
		var t model.WarrantyType
		if err := rows.Scan(
			&t.ID,
			&t.Name,
			&t.Description,
			&t.DurationDays,
			&t.PremiumDurationDays,
		); err != nil {
			r.logger.Error("Failed to scan warranty type", zap.Error(err))
			return nil, err
		}
		types = append(types, t)
	}
	return types, nil
}
