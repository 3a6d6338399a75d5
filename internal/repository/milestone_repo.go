package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Faitltd/FAIT-sub008/internal/model"
	"github.com/Faitltd/FAIT-sub008/pkg/apperr"
)

type MilestoneRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewMilestoneRepository(db *pgxpool.Pool, logger *zap.Logger) *MilestoneRepository {
	return &MilestoneRepository{
		db:     db,
		logger: logger,
	}
}

func (r *MilestoneRepository) Insert(ctx context.Context, m *model.Milestone) (int, error) {
	r.logger.Debug("Inserting milestone",
		zap.Int("project_id", m.ProjectID),
		zap.String("title", m.Title),
		zap.Int("order_index", m.OrderIndex),
	)

	query := `
        INSERT INTO milestones (project_id, title, description, status, progress, order_index, due_date, completed_date)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id
    `
	var id int
	err := r.db.QueryRow(ctx, query,
		m.ProjectID,
		m.Title,
		m.Description,
		m.Status,
		m.Progress,
		m.OrderIndex,
		m.DueDate,
		m.CompletedDate,
	).Scan(&id)

	if err != nil {
		r.logger.Error("Failed to insert milestone", zap.Error(err))
		return 0, err
	}

	r.logger.Info("Milestone inserted successfully",
		zap.Int("id", id),
		zap.Int("project_id", m.ProjectID),
	)
	return id, nil
}

func (r *MilestoneRepository) FindByID(ctx context.Context, id int) (*model.Milestone, error) {
	query := `
        SELECT id, project_id, title, description, status, progress, order_index, due_date, completed_date, created_at, updated_at
        FROM milestones
        WHERE id = $1
    `
	var m model.Milestone
	err := r.db.QueryRow(ctx, query, id).Scan(
		&m.ID,
		&m.ProjectID,
		&m.Title,
		&m.Description,
		&m.Status,
		&m.Progress,
		&m.OrderIndex,
		&m.DueDate,
		&m.CompletedDate,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, apperr.FromScan(err, "milestone", id)
	}
	return &m, nil
}

func (r *MilestoneRepository) FindByProjectID(ctx context.Context, projectID int) ([]model.Milestone, error) {
	query := `
        SELECT id, project_id, title, description, status, progress, order_index, due_date, completed_date, created_at, updated_at
        FROM milestones
        WHERE project_id = $1
        ORDER BY order_index ASC
    `

	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		r.logger.Error("Failed to find milestones", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	milestones := []model.Milestone{}
	for rows.Next() {
		var m model.Milestone
		if err := rows.Scan(
			&m.ID,
			&m.ProjectID,
			&m.Title,
			&m.Description,
			&m.Status,
			&m.Progress,
			&m.OrderIndex,
			&m.DueDate,
			&m.CompletedDate,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			r.logger.Error("Failed to scan milestone", zap.Error(err))
			return nil, err
		}
		milestones = append(milestones, m)
	}

	return milestones, nil
}

// MaxOrderIndex returns the highest order_index for a project, or -1 when
// the project has no milestones.
func (r *MilestoneRepository) MaxOrderIndex(ctx context.Context, projectID int) (int, error) {
	query := `
        SELECT COALESCE(MAX(order_index), -1)
        FROM milestones
        WHERE project_id = $1
    `
	var max int
	if err := r.db.QueryRow(ctx, query, projectID).Scan(&max); err != nil {
		r.logger.Error("Failed to query max order index",
			zap.Int("project_id", projectID),
			zap.Error(err),
		)
		return 0, err
	}
	return max, nil
}

func (r *MilestoneRepository) Update(ctx context.Context, id int, patch model.MilestonePatch) (*model.Milestone, error) {
	query := `
        UPDATE milestones
        SET title       = COALESCE($2, title),
            description = COALESCE($3, description),
            status      = COALESCE($4, status),
            due_date    = COALESCE($5, due_date),
            updated_at  = NOW()
        WHERE id = $1
        RETURNING id, project_id, title, description, status, progress, order_index, due_date, completed_date, created_at, updated_at
    `
	var m model.Milestone
	err := r.db.QueryRow(ctx, query, id,
		patch.Title,
		patch.Description,
		(*string)(patch.Status),
		patch.DueDate,
	).Scan(
		&m.ID,
		&m.ProjectID,
		&m.Title,
		&m.Description,
		&m.Status,
		&m.Progress,
		&m.OrderIndex,
		&m.DueDate,
		&m.CompletedDate,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, apperr.FromScan(err, "milestone", id)
	}
	return &m, nil
}

// UpdateProgress writes the already-coupled progress/status/completed_date
// triple. The coupling rule itself lives in the milestone service.
func (r *MilestoneRepository) UpdateProgress(ctx context.Context, id int, progress int, status *model.MilestoneStatus, completedDate *time.Time) (*model.Milestone, error) {
	query := `
        UPDATE milestones
        SET progress       = $2,
            status         = COALESCE($3, status),
            completed_date = COALESCE($4, completed_date),
            updated_at     = NOW()
        WHERE id = $1
        RETURNING id, project_id, title, description, status, progress, order_index, due_date, completed_date, created_at, updated_at
    `
	var m model.Milestone
	err := r.db.QueryRow(ctx, query, id,
		progress,
		(*string)(status),
		completedDate,
	).Scan(
		&m.ID,
		&m.ProjectID,
		&m.Title,
		&m.Description,
		&m.Status,
		&m.Progress,
		&m.OrderIndex,
		&m.DueDate,
		&m.CompletedDate,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, apperr.FromScan(err, "milestone", id)
	}
	return &m, nil
}

// UpdateOrderIndex sets the order_index of one milestone, scoped to the
// project so a stale id from another project cannot be moved.
func (r *MilestoneRepository) UpdateOrderIndex(ctx context.Context, projectID, id, orderIndex int) error {
	query := `
        UPDATE milestones
        SET order_index = $3, updated_at = NOW()
        WHERE id = $2 AND project_id = $1
    `
	result, err := r.db.Exec(ctx, query, projectID, id, orderIndex)
	if err != nil {
		r.logger.Error("Failed to update milestone order",
			zap.Int("milestone_id", id),
			zap.Int("order_index", orderIndex),
			zap.Error(err),
		)
		return err
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFoundf("milestone %d in project %d", id, projectID)
	}
	return nil
}

// Delete hard-deletes. Remaining order_index values are not renumbered;
// ordering is an ascending sort, gaps are fine.
func (r *MilestoneRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.Exec(ctx, `DELETE FROM milestones WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete milestone",
			zap.Int("milestone_id", id),
			zap.Error(err),
		)
		return err
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFoundf("milestone %d", id)
	}
	r.logger.Info("Milestone deleted", zap.Int("milestone_id", id))
	return nil
}

// CountByProject returns total and completed milestone counts, used for the
// progress fallback when a project has no tasks.
func (r *MilestoneRepository) CountByProject(ctx context.Context, projectID int) (total, completed int, err error) {
	query := `
        SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'completed')
        FROM milestones
        WHERE project_id = $1
    `
	if err := r.db.QueryRow(ctx, query, projectID).Scan(&total, &completed); err != nil {
		r.logger.Error("Failed to count milestones",
			zap.Int("project_id", projectID),
			zap.Error(err),
		)
		return 0, 0, err
	}
	return total, completed, nil
}
