package service

import (
	"context"
	"time"

	"github.com/Faitltd/FAIT-sub008/internal/model"
	"github.com/Faitltd/FAIT-sub008/internal/repository"
)

// Store interfaces consumed by the services. The pgx repositories satisfy
// them; tests substitute in-memory mocks.

type ProjectStore interface {
	Insert(ctx context.Context, p *model.Project) (int, error)
	FindByID(ctx context.Context, id int) (*model.Project, error)
	List(ctx context.Context, f repository.ListFilter) ([]model.Project, error)
	Update(ctx context.Context, id int, patch model.ProjectPatch) (*model.Project, error)
	UpdateStatus(ctx context.Context, id int, status model.ProjectStatus) error
	UpdateProgress(ctx context.Context, id int, progress int) error
}

type StatusUpdateStore interface {
	Insert(ctx context.Context, u *model.ProjectStatusUpdate) (int, error)
	ListByProject(ctx context.Context, projectID int, limit int) ([]model.ProjectStatusUpdate, error)
}

type MilestoneStore interface {
	Insert(ctx context.Context, m *model.Milestone) (int, error)
	FindByID(ctx context.Context, id int) (*model.Milestone, error)
	FindByProjectID(ctx context.Context, projectID int) ([]model.Milestone, error)
	MaxOrderIndex(ctx context.Context, projectID int) (int, error)
	Update(ctx context.Context, id int, patch model.MilestonePatch) (*model.Milestone, error)
	UpdateProgress(ctx context.Context, id int, progress int, status *model.MilestoneStatus, completedDate *time.Time) (*model.Milestone, error)
	UpdateOrderIndex(ctx context.Context, projectID, id, orderIndex int) error
	Delete(ctx context.Context, id int) error
	CountByProject(ctx context.Context, projectID int) (total, completed int, err error)
}

type TaskStore interface {
	Insert(ctx context.Context, t *model.Task) (int, error)
	FindByID(ctx context.Context, id int) (*model.Task, error)
	List(ctx context.Context, projectID int, f repository.TaskFilter) ([]model.Task, error)
	Update(ctx context.Context, id int, patch model.TaskPatch) (*model.Task, error)
	UpdateStatus(ctx context.Context, id int, status model.TaskStatus, completedAt *time.Time) (*model.Task, error)
	Delete(ctx context.Context, id int) error
	CountByProject(ctx context.Context, projectID int) (total, completed int, err error)
}

type WarrantyStore interface {
	Insert(ctx context.Context, w *model.Warranty) (int, error)
	FindByID(ctx context.Context, id int) (*model.Warranty, error)
	List(ctx context.Context, f repository.ListFilter) ([]model.Warranty, error)
	Update(ctx context.Context, id int, patch model.WarrantyPatch, endDate time.Time) (*model.Warranty, error)
	UpdateStatus(ctx context.Context, id int, status model.WarrantyStatus) error
	MarkExpired(ctx context.Context, today time.Time) ([]model.Warranty, error)
}

type WarrantyTypeStore interface {
	FindByID(ctx context.Context, id int) (*model.WarrantyType, error)
	List(ctx context.Context) ([]model.WarrantyType, error)
}

type ClaimStore interface {
	Insert(ctx context.Context, c *model.WarrantyClaim) (int, error)
	FindByID(ctx context.Context, id int) (*model.WarrantyClaim, error)
	ListByWarranty(ctx context.Context, warrantyID int) ([]model.WarrantyClaim, error)
	UpdateStatus(ctx context.Context, id int, status model.ClaimStatus) (*model.WarrantyClaim, error)
	UpdateStatusResolved(ctx context.Context, id int, status model.ClaimStatus, notes string, resolvedAt time.Time, resolvedBy int) (*model.WarrantyClaim, error)
	InsertUpdate(ctx context.Context, u *model.WarrantyClaimUpdate) (int, error)
	ListUpdates(ctx context.Context, claimID int) ([]model.WarrantyClaimUpdate, error)
}

type IssueStore interface {
	Insert(ctx context.Context, i *model.ProjectIssue) (int, error)
	FindByID(ctx context.Context, id int) (*model.ProjectIssue, error)
	ListByProject(ctx context.Context, projectID int, status model.IssueStatus) ([]model.ProjectIssue, error)
	Update(ctx context.Context, id int, patch model.IssuePatch) (*model.ProjectIssue, error)
	UpdateStatus(ctx context.Context, id int, status model.IssueStatus) error
	Resolve(ctx context.Context, id int, notes string, resolvedAt time.Time, resolvedBy int) (*model.ProjectIssue, error)
}

type TimelineStore interface {
	Insert(ctx context.Context, e *model.TimelineEvent) (int, error)
	ListByProject(ctx context.Context, projectID int) ([]model.TimelineEvent, error)
	Update(ctx context.Context, id int, patch model.TimelineEventPatch) (*model.TimelineEvent, error)
	Delete(ctx context.Context, id int) error
}

type ActivityStore interface {
	Insert(ctx context.Context, a *model.ProjectActivity) (int, error)
	ListByProject(ctx context.Context, projectID int, limit int) ([]model.ProjectActivity, error)
}

// EventOutbox enqueues domain events for the dispatcher. Best-effort from
// the services' point of view: a failed enqueue is logged, not returned.
type EventOutbox interface {
	Enqueue(ctx context.Context, aggregateType string, aggregateID int64, routingKey string, payload any) error
}

// WarrantyGate is the single claim-eligibility gate. CheckEligibility
// returns the warranty when a claim may be filed against it and
// apperr.ErrIneligible otherwise. Implemented by WarrantyService.
type WarrantyGate interface {
	CheckEligibility(ctx context.Context, warrantyID int) (*model.Warranty, error)
}
