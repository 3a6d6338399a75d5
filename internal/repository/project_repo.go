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

type ProjectRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewProjectRepository(db *pgxpool.Pool, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ProjectRepository) Insert(ctx context.Context, p *model.Project) (int, error) {
	r.logger.Debug("Inserting project",
		zap.Int("client_id", p.ClientID),
		zap.Int("contractor_id", p.ContractorID),
		zap.String("title", p.Title),
	)

	query := `
        INSERT INTO projects (client_id, contractor_id, title, description, status, budget, start_date, end_date, overall_progress)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id
    `
	var id int
	err := r.db.QueryRow(ctx, query,
		p.ClientID,
		p.ContractorID,
		p.Title,
		p.Description,
		p.Status,
		p.Budget,
		p.StartDate,
		p.EndDate,
		p.OverallProgress,
	).Scan(&id)

	if err != nil {
		r.logger.Error("Failed to insert project", zap.Error(err))
		return 0, err
	}

	r.logger.Info("Project inserted successfully",
		zap.Int("id", id),
		zap.Int("client_id", p.ClientID),
	)
	return id, nil
}

func (r *ProjectRepository) FindByID(ctx context.Context, id int) (*model.Project, error) {
	query := `
        SELECT id, client_id, contractor_id, title, description, status, budget, start_date, end_date, overall_progress, created_at, updated_at
        FROM projects
        WHERE id = $1
    `
	var p model.Project
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.ClientID,
		&p.ContractorID,
		&p.Title,
		&p.Description,
		&p.Status,
		&p.Budget,
		&p.StartDate,
		&p.EndDate,
		&p.OverallProgress,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, apperr.FromScan(err, "project", id)
	}
	return &p, nil
}

// ListFilter narrows List. Zero values mean no filtering on that field.
type ListFilter struct {
	ClientID     int
	ContractorID int
	Status       model.ProjectStatus
}

func (r *ProjectRepository) List(ctx context.Context, f ListFilter) ([]model.Project, error) {
	start := time.Now()

	query := `
        SELECT id, client_id, contractor_id, title, description, status, budget, start_date, end_date, overall_progress, created_at, updated_at
        FROM projects
        WHERE ($1 = 0 OR client_id = $1)
          AND ($2 = 0 OR contractor_id = $2)
          AND ($3 = '' OR status = $3)
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query, f.ClientID, f.ContractorID, string(f.Status))
	if err != nil {
		r.logger.Error("Failed to query projects", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	projects := []model.Project{}
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(
			&p.ID,
			&p.ClientID,
			&p.ContractorID,
			&p.Title,
			&p.Description,
			&p.Status,
			&p.Budget,
			&p.StartDate,
			&p.EndDate,
			&p.OverallProgress,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			r.logger.Error("Failed to scan project row", zap.Error(err))
			return nil, err
		}
		projects = append(projects, p)
	}

	metrics.RecordDBQueryDuration("list", "projects", time.Since(start))
	return projects, nil
}

func (r *ProjectRepository) Update(ctx context.Context, id int, patch model.ProjectPatch) (*model.Project, error) {
	query := `
        UPDATE projects
        SET title       = COALESCE($2, title),
            description = COALESCE($3, description),
            budget      = COALESCE($4, budget),
            start_date  = COALESCE($5, start_date),
            end_date    = COALESCE($6, end_date),
            updated_at  = NOW()
        WHERE id = $1
        RETURNING id, client_id, contractor_id, title, description, status, budget, start_date, end_date, overall_progress, created_at, updated_at
    `
	var p model.Project
	err := r.db.QueryRow(ctx, query, id,
		patch.Title,
		patch.Description,
		patch.Budget,
		patch.StartDate,
		patch.EndDate,
	).Scan(
		&p.ID,
		&p.ClientID,
		&p.ContractorID,
		&p.Title,
		&p.Description,
		&p.Status,
		&p.Budget,
		&p.StartDate,
		&p.EndDate,
		&p.OverallProgress,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, apperr.FromScan(err, "project", id)
	}
	return &p, nil
}

// UpdateStatus persists only the status column. The audit row is a separate
// write owned by the service layer.
func (r *ProjectRepository) UpdateStatus(ctx context.Context, id int, status model.ProjectStatus) error {
	query := `
        UPDATE projects
        SET status = $2, updated_at = NOW()
        WHERE id = $1
    `
	result, err := r.db.Exec(ctx, query, id, status)
	if err != nil {
		r.logger.Error("Failed to update project status",
			zap.Int("project_id", id),
			zap.Error(err),
		)
		return err
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFoundf("project %d", id)
	}
	return nil
}

func (r *ProjectRepository) UpdateProgress(ctx context.Context, id int, progress int) error {
	query := `
        UPDATE projects
        SET overall_progress = $2, updated_at = NOW()
        WHERE id = $1
    `
	result, err := r.db.Exec(ctx, query, id, progress)
	if err != nil {
		r.logger.Error("Failed to update project progress",
			zap.Int("project_id", id),
			zap.Error(err),
		)
		return err
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFoundf("project %d", id)
	}
	return nil
}
