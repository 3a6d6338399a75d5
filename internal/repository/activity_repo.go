package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Faitltd/FAIT-sub008/internal/model"
)

// ActivityRepository owns the append-only project_activities feed.
type ActivityRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewActivityRepository(db *pgxpool.Pool, logger *zap.Logger) *ActivityRepository {
	return &ActivityRepository{db: db, logger: logger}
}

func (r *ActivityRepository) Insert(ctx context.Context, a *model.ProjectActivity) (int, error) {
	query := `
        INSERT INTO project_activities (project_id, user_id, activity_type, entity_type, entity_id, description)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id
    `
	var id int
	err := r.db.QueryRow(ctx, query,
		a.ProjectID,
		a.UserID,
		a.ActivityType,
		a.EntityType,
		a.EntityID,
		a.Description,
	).Scan(&id)
	if err != nil {
		r.logger.Error("Failed to insert activity",
			zap.Int("project_id", a.ProjectID),
			zap.String("activity_type", a.ActivityType),
			zap.Error(err),
		)
		return 0, err
	}
	return id, nil
}

func (r *ActivityRepository) ListByProject(ctx context.Context, projectID int, limit int) ([]model.ProjectActivity, error) {
	query := `
        SELECT id, project_id, user_id, activity_type, entity_type, entity_id, description, created_at
        FROM project_activities
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
		r.logger.Error("Failed to query activities",
			zap.Int("project_id", projectID),
			zap.Error(err),
		)
		return nil, err
	}
	defer rows.Close()

	activities := []model.ProjectActivity{}
	for rows.Next() {
		var a model.ProjectActivity
		if err := rows.Scan(
			&a.ID,
			&a.ProjectID,
			&a.UserID,
			&a.ActivityType,
			&a.EntityType,
			&a.EntityID,
			&a.Description,
			&a.CreatedAt,
		); err != nil {
			r.logger.Error("Failed to scan activity row", zap.Error(err))
			return nil, err
		}
		activities = append(activities, a)
	}
	return activities, nil
}
