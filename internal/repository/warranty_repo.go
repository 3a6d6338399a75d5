package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Faitltd/FAIT-sub008/internal/model"
	"github.com/Faitltd/FAIT-sub008/pkg/apperr"
)

type WarrantyRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewWarrantyRepository(db *pgxpool.Pool, logger *zap.Logger) *WarrantyRepository {
	return &WarrantyRepository{db: db, logger: logger}
}

func (r *WarrantyRepository) Insert(ctx context.Context, w *model.Warranty) (int, error) {
	r.logger.Debug("Inserting warranty",
		zap.Int("project_id", w.ProjectID),
		zap.Int("warranty_type_id", w.WarrantyTypeID),
		zap.Bool("is_premium", w.IsPremium),
	)

	query := `
        INSERT INTO warranties (project_id, client_id, contractor_id, warranty_type_id, start_date, end_date, status, is_premium, auto_renewal)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id
    `
	var id int
	err := r.db.QueryRow(ctx, query,
		w.ProjectID,
		w.ClientID,
		w.ContractorID,
		w.WarrantyTypeID,
		w.StartDate,
		w.EndDate,
		w.Status,
		w.IsPremium,
		w.AutoRenewal,
	).Scan(&id)
	if err != nil {
		r.logger.Error("Failed to insert warranty", zap.Error(err))
		return 0, err
	}

	r.logger.Info("Warranty inserted successfully",
		zap.Int("id", id),
		zap.Int("project_id", w.ProjectID),
	)
	return id, nil
}

func (r *WarrantyRepository) FindByID(ctx context.Context, id int) (*model.Warranty, error) {
	query := `
        SELECT id, project_id, client_id, contractor_id, warranty_type_id, start_date, end_date, status, is_premium, auto_renewal, created_at, updated_at
        FROM warranties
        WHERE id = $1
    `
	var w model.Warranty
	err := r.db.QueryRow(ctx, query, id).Scan(
		&w.ID,
		&w.ProjectID,
		&w.ClientID,
		&w.ContractorID,
		&w.WarrantyTypeID,
		&w.StartDate,
		&w.EndDate,
		&w.Status,
		&w.IsPremium,
		&w.AutoRenewal,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err != nil {
		return nil, apperr.FromScan(err, "warranty", id)
	}
	return &w, nil
}

func (r *WarrantyRepository) List(ctx context.Context, f ListFilter) ([]model.Warranty, error) {
	query := `
        SELECT id, project_id, client_id, contractor_id, warranty_type_id, start_date, end_date, status, is_premium, auto_renewal, created_at, updated_at
        FROM warranties
        WHERE ($1 = 0 OR client_id = $1)
          AND ($2 = 0 OR contractor_id = $2)
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query, f.ClientID, f.ContractorID)
	if err != nil {
		r.logger.Error("Failed to query warranties", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	warranties := []model.Warranty{}
	for rows.Next() {
		var w model.Warranty
		if err := rows.Scan(
			&w.ID,
			&w.ProjectID,
			&w.ClientID,
			&w.ContractorID,
			&w.WarrantyTypeID,
			&w.StartDate,
			&w.EndDate,
			&w.Status,
			&w.IsPremium,
			&w.AutoRenewal,
			&w.CreatedAt,
			&w.UpdatedAt,
		); err != nil {
			r.logger.Error("Failed to scan warranty row", zap.Error(err))
			return nil, err
		}
		warranties = append(warranties, w)
	}
	return warranties, nil
}

// Update writes the patch plus the recomputed end date. endDate always
// carries the authoritative value, computed or overridden by the service.
func (r *WarrantyRepository) Update(ctx context.Context, id int, patch model.WarrantyPatch, endDate time.Time) (*model.Warranty, error) {
	query := `
        UPDATE warranties
        SET warranty_type_id = COALESCE($2, warranty_type_id),
            is_premium       = COALESCE($3, is_premium),
            auto_renewal     = COALESCE($4, auto_renewal),
            start_date       = COALESCE($5, start_date),
            end_date         = $6,
            updated_at       = NOW()
        WHERE id = $1
        RETURNING id, project_id, client_id, contractor_id, warranty_type_id, start_date, end_date, status, is_premium, auto_renewal, created_at, updated_at
    `
	var w model.Warranty
	err := r.db.QueryRow(ctx, query, id,
		patch.WarrantyTypeID,
		patch.IsPremium,
		patch.AutoRenewal,
		patch.StartDate,
		endDate,
	).Scan(
		&w.ID,
		&w.ProjectID,
		&w.ClientID,
		&w.ContractorID,
		&w.WarrantyTypeID,
		&w.StartDate,
		&w.EndDate,
		&w.Status,
		&w.IsPremium,
		&w.AutoRenewal,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err != nil {
		return nil, apperr.FromScan(err, "warranty", id)
	}
	return &w, nil
}

func (r *WarrantyRepository) UpdateStatus(ctx context.Context, id int, status model.WarrantyStatus) error {
	query := `
        UPDATE warranties
        SET status = $2, updated_at = NOW()
        WHERE id = $1
    `
	result, err := r.db.Exec(ctx, query, id, status)
	if err != nil {
		r.logger.Error("Failed to update warranty status",
			zap.Int("warranty_id", id),
			zap.Error(err),
		)
		return err
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFoundf("warranty %d", id)
	}
	return nil
}

// MarkExpired flips every active warranty past its end date to expired and
// returns the affected rows, so the caller can publish expiry events.
func (r *WarrantyRepository) MarkExpired(ctx context.Context, today time.Time) ([]model.Warranty, error) {
	r.logger.Debug("Marking expired warranties")
	query := `
        UPDATE warranties
        SET status = 'expired', updated_at = NOW()
        WHERE status = 'active'
          AND end_date < $1
        RETURNING id, project_id, client_id, contractor_id, warranty_type_id, start_date, end_date, status, is_premium, auto_renewal, created_at, updated_at
    `
	rows, err := r.db.Query(ctx, query, today.Truncate(24*time.Hour))
	if err != nil {
		r.logger.Error("Failed to mark expired warranties", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	expired := []model.Warranty{}
	for rows.Next() {
		var w model.Warranty
		if err := rows.Scan(
			&w.ID,
			&w.ProjectID,
			&w.ClientID,
			&w.ContractorID,
			&w.WarrantyTypeID,
			&w.StartDate,
			&w.EndDate,
			&w.Status,
			&w.IsPremium,
			&w.AutoRenewal,
			&w.CreatedAt,
			&w.UpdatedAt,
		); err != nil {
			r.logger.Error("Failed to scan expired warranty", zap.Error(err))
			return nil, err
		}
		expired = append(expired, w)
	}

	if len(expired) > 0 {
		r.logger.Info("Warranties marked as expired",
			zap.Int("count", len(expired)),
		)
	}
	return expired, nil
}
