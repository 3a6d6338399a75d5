package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Faitltd/FAIT-sub008/internal/model"
	"github.com/Faitltd/FAIT-sub008/pkg/apperr"
	"github.com/Faitltd/FAIT-sub008/pkg/metrics"
)

type TaskRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTaskRepository(db *pgxpool.Pool, logger *zap.Logger) *TaskRepository {
	return &TaskRepository{db: db, logger: logger}
}

func (r *TaskRepository) Insert(ctx context.Context, t *model.Task) (int, error) {
	r.logger.Debug("Inserting task",
		zap.Int("project_id", t.ProjectID),
		zap.String("title", t.Title),
		zap.String("status", string(t.Status)),
	)
	query := `
        INSERT INTO tasks (project_id, milestone_id, title, description, status, priority, assigned_to, due_date)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id
    `
	var id int
	err := r.db.QueryRow(ctx, query,
		t.ProjectID,
		t.MilestoneID,
		t.Title,
		t.Description,
		t.Status,
		t.Priority,
		t.AssignedTo,
		t.DueDate,
	).Scan(&id)
	if err != nil {
		r.logger.Error("Failed to insert task",
			zap.Error(err),
			zap.Int("project_id", t.ProjectID),
		)
		return 0, err
	}
	r.logger.Info("Task inserted successfully",
		zap.Int("task_id", id),
		zap.Int("project_id", t.ProjectID),
	)
	return id, nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id int) (*model.Task, error) {
	query := `
        SELECT id, project_id, milestone_id, title, description, status, priority, assigned_to, due_date, completed_at, created_at, updated_at
        FROM tasks
        WHERE id = $1
    `
	var t model.Task
	err := r.db.QueryRow(ctx, query, id).Scan(
		&t.ID,
		&t.ProjectID,
		&t.MilestoneID,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.Priority,
		&t.AssignedTo,
		&t.DueDate,
		&t.CompletedAt,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, apperr.FromScan(err, "task", id)
	}
	return &t, nil
}

// TaskFilter holds pure predicate filters for List. Zero values disable the
// corresponding predicate.
type TaskFilter struct {
	MilestoneID int
	Status      model.TaskStatus
	Priority    model.TaskPriority
	AssignedTo  int
}

func (r *TaskRepository) List(ctx context.Context, projectID int, f TaskFilter) ([]model.Task, error) {
	start := time.Now()

	query := `
        SELECT id, project_id, milestone_id, title, description, status, priority, assigned_to, due_date, completed_at, created_at, updated_at
        FROM tasks
        WHERE project_id = $1
          AND ($2 = 0 OR milestone_id = $2)
          AND ($3 = '' OR status = $3)
          AND ($4 = '' OR priority = $4)
          AND ($5 = 0 OR assigned_to = $5)
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query,
		projectID,
		f.MilestoneID,
		string(f.Status),
		string(f.Priority),
		f.AssignedTo,
	)
	if err != nil {
		r.logger.Error("Failed to query tasks",
			zap.Error(err),
			zap.Int("project_id", projectID),
		)
		return nil, err
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(
			&t.ID,
			&t.ProjectID,
			&t.MilestoneID,
			&t.Title,
			&t.Description,
			&t.Status,
			&t.Priority,
			&t.AssignedTo,
			&t.DueDate,
			&t.CompletedAt,
			&t.CreatedAt,
			&t.UpdatedAt,
		); err != nil {
			r.logger.Error("Failed to scan task row", zap.Error(err))
			return nil, err
		}
		tasks = append(tasks, t)
	}

	metrics.RecordDBQueryDuration("list", "tasks", time.Since(start))
	return tasks, nil
}

func (r *TaskRepository) Update(ctx context.Context, id int, patch model.TaskPatch) (*model.Task, error) {
	query := `
        UPDATE tasks
        SET title        = COALESCE($2, title),
            description  = COALESCE($3, description),
            milestone_id = COALESCE($4, milestone_id),
            priority     = COALESCE($5, priority),
            assigned_to  = COALESCE($6, assigned_to),
            due_date     = COALESCE($7, due_date),
            updated_at   = NOW()
        WHERE id = $1
        RETURNING id, project_id, milestone_id, title, description, status, priority, assigned_to, due_date, completed_at, created_at, updated_at
    `
	var t model.Task
	err := r.db.QueryRow(ctx, query, id,
		patch.Title,
		patch.Description,
		patch.MilestoneID,
		(*string)(patch.Priority),
		patch.AssignedTo,
		patch.DueDate,
	).Scan(
		&t.ID,
		&t.ProjectID,
		&t.MilestoneID,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.Priority,
		&t.AssignedTo,
		&t.DueDate,
		&t.CompletedAt,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, apperr.FromScan(err, "task", id)
	}
	return &t, nil
}

// UpdateStatus is a direct status set. completedAt is only non-nil when the
// new status is completed.
func (r *TaskRepository) UpdateStatus(ctx context.Context, id int, status model.TaskStatus, completedAt *time.Time) (*model.Task, error) {
	query := `
        UPDATE tasks
        SET status       = $2,
            completed_at = COALESCE($3, completed_at),
            updated_at   = NOW()
        WHERE id = $1
        RETURNING id, project_id, milestone_id, title, description, status, priority, assigned_to, due_date, completed_at, created_at, updated_at
    `
	var t model.Task
	err := r.db.QueryRow(ctx, query, id, status, completedAt).Scan(
		&t.ID,
		&t.ProjectID,
		&t.MilestoneID,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.Priority,
		&t.AssignedTo,
		&t.DueDate,
		&t.CompletedAt,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, apperr.FromScan(err, "task", id)
	}
	return &t, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete task",
			zap.Int("task_id", id),
			zap.Error(err),
		)
		return err
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFoundf("task %d", id)
	}
	r.logger.Info("Task deleted", zap.Int("task_id", id))
	return nil
}

// CountByProject returns total and completed task counts for progress
// aggregation.
func (r *TaskRepository) CountByProject(ctx context.Context, projectID int) (total, completed int, err error) {
	query := `
        SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'completed')
        FROM tasks
        WHERE project_id = $1
    `
	if err := r.db.QueryRow(ctx, query, projectID).Scan(&total, &completed); err != nil {
		r.logger.Error("Failed to count tasks",
			zap.Int("project_id", projectID),
			zap.Error(err),
		)
		return 0, 0, err
	}
	return total, completed, nil
}
