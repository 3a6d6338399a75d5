package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faitltd/FAIT-sub008/internal/model"
	"github.com/Faitltd/FAIT-sub008/pkg/apperr"
)

// IssueService 负责项目问题单的跟踪与关闭。
type IssueService struct {
	issues     IssueStore
	activities ActivityStore
	logger     *zap.Logger
	now        func() time.Time
}

func NewIssueService(issues IssueStore, activities ActivityStore, logger *zap.Logger) *IssueService {
	return &IssueService{
		issues:     issues,
		activities: activities,
		logger:     logger,
		now:        time.Now,
	}
}

type CreateIssueInput struct {
	ProjectID   int
	Title       string
	Description string
	Priority    model.TaskPriority
	AssignedTo  *int
	DueDate     *time.Time
}

func (s *IssueService) Create(ctx context.Context, in CreateIssueInput, actorID int) (*model.ProjectIssue, error) {
	if in.ProjectID <= 0 {
		return nil, apperr.Validationf("project_id is required")
	}
	if in.Title == "" {
		return nil, apperr.Validationf("title is required")
	}
	if in.Priority == "" {
		in.Priority = model.PriorityMedium
	}
	if !in.Priority.Valid() {
		return nil, apperr.Validationf("invalid priority %q", in.Priority)
	}

	i := &model.ProjectIssue{
		ProjectID:   in.ProjectID,
		ReportedBy:  actorID,
		Title:       in.Title,
		Description: in.Description,
		Status:      model.IssueOpen,
		Priority:    in.Priority,
		AssignedTo:  in.AssignedTo,
		DueDate:     in.DueDate,
	}
	id, err := s.issues.Insert(ctx, i)
	if err != nil {
		s.logger.Error("create issue failed", zap.Int("project_id", in.ProjectID), zap.Error(err))
		return nil, err
	}
	i.ID = id
	s.logger.Info("issue opened", zap.Int("issue_id", id), zap.Int("project_id", in.ProjectID))
	s.recordActivity(ctx, in.ProjectID, actorID, "create", id, fmt.Sprintf("Issue %q opened", in.Title))
	return i, nil
}

func (s *IssueService) Get(ctx context.Context, id int) (*model.ProjectIssue, error) {
	return s.issues.FindByID(ctx, id)
}

func (s *IssueService) ListByProject(ctx context.Context, projectID int, status model.IssueStatus) ([]model.ProjectIssue, error) {
	if status != "" && !status.Valid() {
		return nil, apperr.Validationf("invalid issue status %q", status)
	}
	return s.issues.ListByProject(ctx, projectID, status)
}

func (s *IssueService) Update(ctx context.Context, id int, patch model.IssuePatch, actorID int) (*model.ProjectIssue, error) {
	if patch.Priority != nil && !patch.Priority.Valid() {
		return nil, apperr.Validationf("invalid priority %q", *patch.Priority)
	}
	i, err := s.issues.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.recordActivity(ctx, i.ProjectID, actorID, "update", id, fmt.Sprintf("Issue %q updated", i.Title))
	return i, nil
}

// Resolve closes out an issue with resolution notes. Like claims, the
// resolution stamp is written once and kept on later status changes.
func (s *IssueService) Resolve(ctx context.Context, id int, notes string, actorID int) (*model.ProjectIssue, error) {
	i, err := s.issues.Resolve(ctx, id, notes, s.now(), actorID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("issue resolved", zap.Int("issue_id", id), zap.Int("resolved_by", actorID))
	s.recordActivity(ctx, i.ProjectID, actorID, "status_change", id, fmt.Sprintf("Issue %q resolved", i.Title))
	return i, nil
}

func (s *IssueService) UpdateStatus(ctx context.Context, id int, status model.IssueStatus, actorID int) error {
	if !status.Valid() {
		return apperr.Validationf("invalid issue status %q", status)
	}
	i, err := s.issues.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.issues.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	s.recordActivity(ctx, i.ProjectID, actorID, "status_change", id, fmt.Sprintf("Issue %q moved to %s", i.Title, status))
	return nil
}

func (s *IssueService) recordActivity(ctx context.Context, projectID, actorID int, activityType string, entityID int, description string) {
	if s.activities == nil || projectID <= 0 {
		return
	}
	_, err := s.activities.Insert(ctx, &model.ProjectActivity{
		ProjectID:    projectID,
		UserID:       actorID,
		ActivityType: activityType,
		EntityType:   "issue",
		EntityID:     entityID,
		Description:  description,
	})
	if err != nil {
		s.logger.Warn("record activity failed", zap.Int("project_id", projectID), zap.String("type", activityType), zap.Error(err))
	}
}
