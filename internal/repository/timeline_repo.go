package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Faitltd/FAIT-sub008/internal/model"
	"github.com/Faitltd/FAIT-sub008/pkg/apperr"
)

type TimelineRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTimelineRepository(db *pgxpool.Pool, logger *zap.Logger) *TimelineRepository {
	return &TimelineRepository{db: db, logger: logger}
}

func (r *TimelineRepository) Insert(ctx context.Context, e *model.TimelineEvent) (int, error) {
	query := `
        INSERT INTO project_timeline (project_id, title, description, event_type, start_date, end_date)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id
    `
	var id int
	err := r.db.QueryRow(ctx, query,
		e.ProjectID,
		e.Title,
		e.Description,
		e.EventType,
		e.StartDate,
		e.EndDate,
	).Scan(&id)
	if err != nil {
		r.logger.Error("Failed to insert timeline event",
			zap.Int("project_id", e.ProjectID),
			zap.Error(err),
		)
		return 0, err
	}
	return id, nil
}

func (r *TimelineRepository) ListByProject(ctx context.Context, projectID int) ([]model.TimelineEvent, error) {
	query := `
        SELECT id, project_id, title, description, event_type, start_date, end_date, created_at
        FROM project_timeline
        WHERE project_id = $1
        ORDER BY start_date ASC
    `
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		r.logger.Error("Failed to query timeline events",
			zap.Int("project_id", projectID),
			zap.Error(err),
		)
		return nil, err
	}
	defer rows.Close()

	events := []model.TimelineEvent{}
	for rows.Next() {
		var e model.TimelineEvent
		if err := rows.Scan(
			&e.ID,
			&e.ProjectID,
			&e.Title,
			&e.Description,
			&e.EventType,
			&e.StartDate,
			&e.EndDate,
			&e.CreatedAt,
		); err != nil {
			r.logger.Error("Failed to scan timeline row", zap.Error(err))
			return nil, err
		}
		events = append(events, e)
	}
	return events, nil
}

func (r *TimelineRepository) Update(ctx context.Context, id int, patch model.TimelineEventPatch) (*model.TimelineEvent, error) {
	query := `
        UPDATE project_timeline
        SET title       = COALESCE($2, title),
            description = COALESCE($3, description),
            event_type  = COALESCE($4, event_type),
            start_date  = COALESCE($5, start_date),
            end_date    = COALESCE($6, end_date)
        WHERE id = $1
        RETURNING id, project_id, title, description, event_type, start_date, end_date, created_at
    `
	var e model.TimelineEvent
	err := r.db.QueryRow(ctx, query, id,
		patch.Title,
		patch.Description,
		patch.EventType,
		patch.StartDate,
		patch.EndDate,
	).Scan(
		&e.ID,
		&e.ProjectID,
		&e.Title,
		&e.Description,
		&e.EventType,
		&e.StartDate,
		&e.EndDate,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, apperr.FromScan(err, "timeline event", id)
	}
	return &e, nil
}

func (r *TimelineRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.Exec(ctx, `DELETE FROM project_timeline WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete timeline event",
			zap.Int("timeline_id", id),
			zap.Error(err),
		)
		return err
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFoundf("timeline event %d", id)
	}
	return nil
}
