package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/Faitltd/FAIT-sub008/contracts/mq"
	"github.com/Faitltd/FAIT-sub008/internal/model"
	"github.com/Faitltd/FAIT-sub008/internal/repository"
	"github.com/Faitltd/FAIT-sub008/pkg/apperr"
	"github.com/Faitltd/FAIT-sub008/pkg/metrics"
)

// ProjectService 负责项目生命周期：状态流转、审计记录与整体进度汇总。
type ProjectService struct {
	projects      ProjectStore
	statusUpdates StatusUpdateStore
	milestones    MilestoneStore
	tasks         TaskStore
	timeline      TimelineStore
	activities    ActivityStore
	outbox        EventOutbox
	logger        *zap.Logger
	now           func() time.Time
}

func NewProjectService(
	projects ProjectStore,
	statusUpdates StatusUpdateStore,
	milestones MilestoneStore,
	tasks TaskStore,
	timeline TimelineStore,
	activities ActivityStore,
	outbox EventOutbox,
	logger *zap.Logger,
) *ProjectService {
	return &ProjectService{
		projects:      projects,
		statusUpdates: statusUpdates,
		milestones:    milestones,
		tasks:         tasks,
		timeline:      timeline,
		activities:    activities,
		outbox:        outbox,
		logger:        logger,
		now:           time.Now,
	}
}

type CreateProjectInput struct {
	ClientID     int
	ContractorID int
	Title        string
	Description  string
	Status       model.ProjectStatus
	Budget       float64
	StartDate    *time.Time
	EndDate      *time.Time
}

func (s *ProjectService) Create(ctx context.Context, in CreateProjectInput) (*model.Project, error) {
	if in.Title == "" {
		return nil, apperr.Validationf("title is required")
	}
	if in.ClientID <= 0 {
		return nil, apperr.Validationf("client_id is required")
	}
	if in.Status == "" {
		in.Status = model.ProjectPending
	}
	if !in.Status.Valid() {
		return nil, apperr.Validationf("invalid project status %q", in.Status)
	}
	if in.Budget < 0 {
		return nil, apperr.Validationf("budget must not be negative")
	}

	p := &model.Project{
		ClientID:     in.ClientID,
		ContractorID: in.ContractorID,
		Title:        in.Title,
		Description:  in.Description,
		Status:       in.Status,
		Budget:       in.Budget,
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
	}
	id, err := s.projects.Insert(ctx, p)
	if err != nil {
		s.logger.Error("create project failed", zap.Int("client_id", in.ClientID), zap.Error(err))
		return nil, err
	}
	p.ID = id
	s.logger.Info("project created", zap.Int("project_id", id), zap.Int("client_id", in.ClientID))
	return p, nil
}

func (s *ProjectService) Get(ctx context.Context, id int) (*model.Project, error) {
	return s.projects.FindByID(ctx, id)
}

func (s *ProjectService) List(ctx context.Context, f repository.ListFilter) ([]model.Project, error) {
	return s.projects.List(ctx, f)
}

// Update patches descriptive fields. Status never moves through here, only
// through TransitionStatus, so every change leaves an audit row.
func (s *ProjectService) Update(ctx context.Context, id int, patch model.ProjectPatch) (*model.Project, error) {
	return s.projects.Update(ctx, id, patch)
}

// TransitionStatus moves a project to a new status and appends an immutable
// audit record of the transition. The two writes are not atomic: if the
// audit insert fails the transition stands and the caller gets the updated
// project together with a PartialFailure.
func (s *ProjectService) TransitionStatus(ctx context.Context, id int, newStatus model.ProjectStatus, reason string, actorID int) (*model.Project, error) {
	if !newStatus.Valid() {
		return nil, apperr.Validationf("invalid project status %q", newStatus)
	}

	current, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := current.Status

	if err := s.projects.UpdateStatus(ctx, id, newStatus); err != nil {
		return nil, fmt.Errorf("update project status: %w", err)
	}
	current.Status = newStatus
	metrics.ProjectTransitionCount.WithLabelValues(string(previous), string(newStatus)).Inc()
	s.logger.Info("project status changed",
		zap.Int("project_id", id),
		zap.String("from", string(previous)),
		zap.String("to", string(newStatus)))

	s.publish(ctx, "project", int64(id), "project.status_changed", mq.ProjectStatusChangedPayload{
		ProjectID:      id,
		PreviousStatus: string(previous),
		NewStatus:      string(newStatus),
		UpdateReason:   reason,
		UpdatedBy:      actorID,
		ChangedAt:      s.now(),
	})

	_, auditErr := s.statusUpdates.Insert(ctx, &model.ProjectStatusUpdate{
		ProjectID:      id,
		PreviousStatus: previous,
		NewStatus:      newStatus,
		UpdateReason:   reason,
		UpdatedBy:      actorID,
	})
	if auditErr != nil {
		metrics.AuditWriteFailureCount.Inc()
		s.logger.Error("status audit write failed; transition stands",
			zap.Int("project_id", id),
			zap.String("new_status", string(newStatus)),
			zap.Error(auditErr))
		return current, apperr.Partial("project status audit", auditErr)
	}
	return current, nil
}

// StatusHistory returns the project's audit trail, newest first.
func (s *ProjectService) StatusHistory(ctx context.Context, id int, limit int) ([]model.ProjectStatusUpdate, error) {
	if _, err := s.projects.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.statusUpdates.ListByProject(ctx, id, limit)
}

// OverallProgress computes the project's progress percentage. Task counts
// take precedence; projects with no tasks fall back to milestone counts,
// and projects with neither derive a default from their status.
func (s *ProjectService) OverallProgress(ctx context.Context, id int) (int, error) {
	p, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return 0, err
	}

	total, completed, err := s.tasks.CountByProject(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	if total > 0 {
		return roundPercent(completed, total), nil
	}

	total, completed, err = s.milestones.CountByProject(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("count milestones: %w", err)
	}
	if total > 0 {
		return roundPercent(completed, total), nil
	}

	switch p.Status {
	case model.ProjectCompleted:
		return 100, nil
	case model.ProjectInProgress:
		return 50, nil
	case model.ProjectOnHold:
		return 25, nil
	default:
		return 0, nil
	}
}

// RecalculateProgress recomputes OverallProgress and persists it.
func (s *ProjectService) RecalculateProgress(ctx context.Context, id int) (int, error) {
	progress, err := s.OverallProgress(ctx, id)
	if err != nil {
		return 0, err
	}
	if err := s.projects.UpdateProgress(ctx, id, progress); err != nil {
		return 0, err
	}
	s.logger.Debug("project progress recalculated", zap.Int("project_id", id), zap.Int("progress", progress))
	return progress, nil
}

// Activities returns the project's activity feed, newest first.
func (s *ProjectService) Activities(ctx context.Context, id int, limit int) ([]model.ProjectActivity, error) {
	return s.activities.ListByProject(ctx, id, limit)
}

// Timeline operations ------------------------------------------------------

type CreateTimelineEventInput struct {
	ProjectID   int
	Title       string
	Description string
	EventType   string
	StartDate   time.Time
	EndDate     *time.Time
}

func (s *ProjectService) AddTimelineEvent(ctx context.Context, in CreateTimelineEventInput) (*model.TimelineEvent, error) {
	if in.ProjectID <= 0 {
		return nil, apperr.Validationf("project_id is required")
	}
	if in.Title == "" {
		return nil, apperr.Validationf("title is required")
	}
	if in.StartDate.IsZero() {
		return nil, apperr.Validationf("start_date is required")
	}
	e := &model.TimelineEvent{
		ProjectID:   in.ProjectID,
		Title:       in.Title,
		Description: in.Description,
		EventType:   in.EventType,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
	}
	id, err := s.timeline.Insert(ctx, e)
	if err != nil {
		return nil, err
	}
	e.ID = id
	return e, nil
}

func (s *ProjectService) TimelineEvents(ctx context.Context, projectID int) ([]model.TimelineEvent, error) {
	return s.timeline.ListByProject(ctx, projectID)
}

func (s *ProjectService) UpdateTimelineEvent(ctx context.Context, id int, patch model.TimelineEventPatch) (*model.TimelineEvent, error) {
	return s.timeline.Update(ctx, id, patch)
}

func (s *ProjectService) DeleteTimelineEvent(ctx context.Context, id int) error {
	return s.timeline.Delete(ctx, id)
}

func (s *ProjectService) publish(ctx context.Context, aggregateType string, aggregateID int64, routingKey string, payload any) {
	if s.outbox == nil {
		return
	}
	if err := s.outbox.Enqueue(ctx, aggregateType, aggregateID, routingKey, payload); err != nil {
		s.logger.Warn("enqueue event failed", zap.String("routing_key", routingKey), zap.Error(err))
	}
}

// roundPercent returns round(100 * completed / total) with half away from
// zero, matching the stored overall_progress values.
func roundPercent(completed, total int) int {
	return int(math.Round(100 * float64(completed) / float64(total)))
}
