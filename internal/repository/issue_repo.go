package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Faitltd/FAIT-sub008/internal/model"
	"github.com/Faitltd/FAIT-sub008/pkg/apperr"
)

type IssueRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewIssueRepository(db *pgxpool.Pool, logger *zap.Logger) *IssueRepository {
	return &IssueRepository{db: db, logger: logger}
}

func (r *IssueRepository) Insert(ctx context.Context, i *model.ProjectIssue) (int, error) {
	r.logger.Debug("Inserting project issue",
		zap.Int("project_id", i.ProjectID),
		zap.String("title", i.Title),
	)

	query := `
        INSERT INTO project_issues (project_id, reported_by, assigned_to, title, description, priority, status, due_date)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id
    `
	var id int
	err := r.db.QueryRow(ctx, query,
		i.ProjectID,
		i.ReportedBy,
		i.AssignedTo,
		i.Title,
		i.Description,
		i.Priority,
		i.Status,
		i.DueDate,
	).Scan(&id)
	if err != nil {
		r.logger.Error("Failed to insert project issue", zap.Error(err))
		return 0, err
	}
	return id, nil
}

func (r *IssueRepository) FindByID(ctx context.Context, id int) (*model.ProjectIssue, error) {
	query := `
        SELECT id, project_id, reported_by, assigned_to, title, description, priority, status, due_date, resolution_notes, resolved_at, resolved_by, created_at, updated_at
        FROM project_issues
        WHERE id = $1
    `
	var i model.ProjectIssue
	err := r.db.QueryRow(ctx, query, id).Scan(
		&i.ID,
		&i.ProjectID,
		&i.ReportedBy,
		&i.AssignedTo,
		&i.Title,
		&i.Description,
		&i.Priority,
		&i.Status,
		&i.DueDate,
		&i.ResolutionNotes,
		&i.ResolvedAt,
		&i.ResolvedBy,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	if err != nil {
		return nil, apperr.FromScan(err, "project issue", id)
	}
	return &i, nil
}

func (r *IssueRepository) ListByProject(ctx context.Context, projectID int, status model.IssueStatus) ([]model.ProjectIssue, error) {
	query := `
        SELECT id, project_id, reported_by, assigned_to, title, description, priority, status, due_date, resolution_notes, resolved_at, resolved_by, created_at, updated_at
        FROM project_issues
        WHERE project_id = $1
          AND ($2 = '' OR status = $2)
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query, projectID, string(status))
	if err != nil {
		r.logger.Error("Failed to query project issues",
			zap.Int("project_id", projectID),
			zap.Error(err),
		)
		return nil, err
	}
	defer rows.Close()

	issues := []model.ProjectIssue{}
	for rows.Next() {
		var i model.ProjectIssue
		if err := rows.Scan(
			&i.ID,
			&i.ProjectID,
			&i.ReportedBy,
			&i.AssignedTo,
			&i.Title,
			&i.Description,
			&i.Priority,
			&i.Status,
			&i.DueDate,
			&i.ResolutionNotes,
			&i.ResolvedAt,
			&i.ResolvedBy,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			r.logger.Error("Failed to scan issue row", zap.Error(err))
			return nil, err
		}
		issues = append(issues, i)
	}
	return issues, nil
}

func (r *IssueRepository) Update(ctx context.Context, id int, patch model.IssuePatch) (*model.ProjectIssue, error) {
	query := `
        UPDATE project_issues
        SET title       = COALESCE($2, title),
            description = COALESCE($3, description),
            priority    = COALESCE($4, priority),
            assigned_to = COALESCE($5, assigned_to),
            due_date    = COALESCE($6, due_date),
            updated_at  = NOW()
        WHERE id = $1
        RETURNING id, project_id, reported_by, assigned_to, title, description, priority, status, due_date, resolution_notes, resolved_at, resolved_by, created_at, updated_at
    `
	var i model.ProjectIssue
	err := r.db.QueryRow(ctx, query, id,
		patch.Title,
		patch.Description,
		(*string)(patch.Priority),
		patch.AssignedTo,
		patch.DueDate,
	).Scan(
		&i.ID,
		&i.ProjectID,
		&i.ReportedBy,
		&i.AssignedTo,
		&i.Title,
		&i.Description,
		&i.Priority,
		&i.Status,
		&i.DueDate,
		&i.ResolutionNotes,
		&i.ResolvedAt,
		&i.ResolvedBy,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	if err != nil {
		return nil, apperr.FromScan(err, "project issue", id)
	}
	return &i, nil
}

func (r *IssueRepository) UpdateStatus(ctx context.Context, id int, status model.IssueStatus) error {
	query := `
        UPDATE project_issues
        SET status = $2, updated_at = NOW()
        WHERE id = $1
    `
	result, err := r.db.Exec(ctx, query, id, status)
	if err != nil {
		r.logger.Error("Failed to update issue status",
			zap.Int("issue_id", id),
			zap.Error(err),
		)
		return err
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFoundf("project issue %d", id)
	}
	return nil
}

// Resolve stamps the resolution exactly once; an already-resolved issue is
// left untouched.
func (r *IssueRepository) Resolve(ctx context.Context, id int, notes string, resolvedAt time.Time, resolvedBy int) (*model.ProjectIssue, error) {
	query := `
        UPDATE project_issues
        SET status           = 'resolved',
            resolution_notes = $2,
            resolved_at      = $3,
            resolved_by      = $4,
            updated_at       = NOW()
        WHERE id = $1 AND resolved_at IS NULL
        RETURNING id, project_id, reported_by, assigned_to, title, description, priority, status, due_date, resolution_notes, resolved_at, resolved_by, created_at, updated_at
    `
	var i model.ProjectIssue
	err := r.db.QueryRow(ctx, query, id, notes, resolvedAt, resolvedBy).Scan(
		&i.ID,
		&i.ProjectID,
		&i.ReportedBy,
		&i.AssignedTo,
		&i.Title,
		&i.Description,
		&i.Priority,
		&i.Status,
		&i.DueDate,
		&i.ResolutionNotes,
		&i.ResolvedAt,
		&i.ResolvedBy,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	if err != nil {
		return nil, apperr.FromScan(err, "project issue", id)
	}
	return &i, nil
}
