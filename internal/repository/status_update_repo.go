package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Faitltd/FAIT-sub008/internal/model"
)

// StatusUpdateRepository owns the project_status_updates audit table.
// Rows are insert-only.
type StatusUpdateRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewStatusUpdateRepository(db *pgxpool.Pool, logger *zap.Logger) *StatusUpdateRepository {
	return &StatusUpdateRepository{db: db, logger: logger}
}

func (r *StatusUpdateRepository) Insert(ctx context.Context, u *model.ProjectStatusUpdate) (int, error) {
	query := `
        INSERT INTO project_status_updates (project_id, previous_status, new_status, update_reason, updated_by)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id
    `
	var id int
	err := r.db.QueryRow(ctx, query,
		u.ProjectID,
		u.PreviousStatus,
		u.NewStatus,
		u.UpdateReason,
		u.UpdatedBy,
	).Scan(&id)
	if err != nil {
		r.logger.Error("Failed to insert status update",
			zap.Int("project_id", u.ProjectID),
			zap.Error(err),
		)
		return 0, err
	}
	return id, nil
}

func (r *StatusUpdateRepository) ListByProject(ctx context.Context, projectID int, limit int) ([]model.ProjectStatusUpdate, error) {
	query := `
        SELECT id, project_id, previous_status, new_status, update_reason, updated_by, created_at
        FROM project_status_updates
        WHERE project_id = $1
        ORDER BY created_at DESC
    `
	args := []any{projectID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query status updates",
			zap.Int("project_id", projectID),
			zap.Error(err),
		)
		return nil, err
	}
	defer rows.Close()

	updates := []model.ProjectStatusUpdate{}
	for rows.Next() {
		var u model.ProjectStatusUpdate
		if err := rows.Scan(
			&u.ID,
			&u.ProjectID,
			&u.PreviousStatus,
			&u.NewStatus,
			&u.UpdateReason,
			&u.UpdatedBy,
			&u.CreatedAt,
		); err != nil {
			r.logger.Error("Failed to scan status update row", zap.Error(err))
			return nil, err
		}
		updates = append(updates, u)
	}
	return updates, nil
}
