package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faitltd/FAIT-sub008/internal/model"
	"github.com/Faitltd/FAIT-sub008/internal/repository"
	"github.com/Faitltd/FAIT-sub008/pkg/apperr"
)

// ProgressRecalculator recomputes and persists a project's overall
// progress after a task mutation. Implemented by ProjectService.
type ProgressRecalculator interface {
	RecalculateProgress(ctx context.Context, projectID int) (int, error)
}

// TaskService 负责任务的增删改查与状态流转，任务变更后联动刷新项目进度。
type TaskService struct {
	tasks      TaskStore
	activities ActivityStore
	progress   ProgressRecalculator
	logger     *zap.Logger
	now        func() time.Time
}

func NewTaskService(tasks TaskStore, activities ActivityStore, progress ProgressRecalculator, logger *zap.Logger) *TaskService {
	return &TaskService{
		tasks:      tasks,
		activities: activities,
		progress:   progress,
		logger:     logger,
		now:        time.Now,
	}
}

type CreateTaskInput struct {
	ProjectID   int
	MilestoneID *int
	Title       string
	Description string
	Status      model.TaskStatus
	Priority    model.TaskPriority
	AssignedTo  *int
	DueDate     *time.Time
}

func (s *TaskService) Create(ctx context.Context, in CreateTaskInput, actorID int) (*model.Task, error) {
	if in.ProjectID <= 0 {
		return nil, apperr.Validationf("project_id is required")
	}
	if in.Title == "" {
		return nil, apperr.Validationf("title is required")
	}
	if in.Status == "" {
		in.Status = model.TaskTodo
	}
	if !in.Status.Valid() {
		return nil, apperr.Validationf("invalid task status %q", in.Status)
	}
	if in.Priority == "" {
		in.Priority = model.PriorityMedium
	}
	if !in.Priority.Valid() {
		return nil, apperr.Validationf("invalid task priority %q", in.Priority)
	}

	t := &model.Task{
		ProjectID:   in.ProjectID,
		MilestoneID: in.MilestoneID,
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		AssignedTo:  in.AssignedTo,
		DueDate:     in.DueDate,
	}
	if in.Status == model.TaskCompleted {
		now := s.now()
		t.CompletedAt = &now
	}

	id, err := s.tasks.Insert(ctx, t)
	if err != nil {
		s.logger.Error("create task failed", zap.Int("project_id", in.ProjectID), zap.Error(err))
		return nil, err
	}
	t.ID = id
	s.logger.Info("task created", zap.Int("task_id", id), zap.Int("project_id", in.ProjectID))

	s.recordActivity(ctx, in.ProjectID, actorID, "create", id, fmt.Sprintf("Task %q created", in.Title))
	s.refreshProjectProgress(ctx, in.ProjectID)
	return t, nil
}

func (s *TaskService) Get(ctx context.Context, id int) (*model.Task, error) {
	return s.tasks.FindByID(ctx, id)
}

func (s *TaskService) List(ctx context.Context, projectID int, f repository.TaskFilter) ([]model.Task, error) {
	return s.tasks.List(ctx, projectID, f)
}

func (s *TaskService) Update(ctx context.Context, id int, patch model.TaskPatch, actorID int) (*model.Task, error) {
	if patch.Priority != nil && !patch.Priority.Valid() {
		return nil, apperr.Validationf("invalid task priority %q", *patch.Priority)
	}
	t, err := s.tasks.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.recordActivity(ctx, t.ProjectID, actorID, "update", id, fmt.Sprintf("Task %q updated", t.Title))
	return t, nil
}

// UpdateStatus sets the task's status directly. Completing stamps
// completed_at. Project progress is refreshed afterwards, best effort.
func (s *TaskService) UpdateStatus(ctx context.Context, id int, status model.TaskStatus, actorID int) (*model.Task, error) {
	if !status.Valid() {
		return nil, apperr.Validationf("invalid task status %q", status)
	}
	var completedAt *time.Time
	if status == model.TaskCompleted {
		now := s.now()
		completedAt = &now
	}
	t, err := s.tasks.UpdateStatus(ctx, id, status, completedAt)
	if err != nil {
		return nil, err
	}
	s.logger.Info("task status changed",
		zap.Int("task_id", id),
		zap.String("status", string(status)))

	s.recordActivity(ctx, t.ProjectID, actorID, "status_change", id, fmt.Sprintf("Task %q moved to %s", t.Title, status))
	s.refreshProjectProgress(ctx, t.ProjectID)
	return t, nil
}

func (s *TaskService) Delete(ctx context.Context, id int, actorID int) error {
	t, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("task deleted", zap.Int("task_id", id), zap.Int("project_id", t.ProjectID))
	s.recordActivity(ctx, t.ProjectID, actorID, "delete", id, fmt.Sprintf("Task %q deleted", t.Title))
	s.refreshProjectProgress(ctx, t.ProjectID)
	return nil
}

func (s *TaskService) refreshProjectProgress(ctx context.Context, projectID int) {
	if s.progress == nil {
		return
	}
	if _, err := s.progress.RecalculateProgress(ctx, projectID); err != nil {
		s.logger.Warn("refresh project progress failed", zap.Int("project_id", projectID), zap.Error(err))
	}
}

func (s *TaskService) recordActivity(ctx context.Context, projectID, actorID int, activityType string, entityID int, description string) {
	if s.activities == nil {
		return
	}
	_, err := s.activities.Insert(ctx, &model.ProjectActivity{
		ProjectID:    projectID,
		UserID:       actorID,
		ActivityType: activityType,
		EntityType:   "task",
		EntityID:     entityID,
		Description:  description,
	})
	if err != nil {
		s.logger.Warn("record activity failed", zap.Int("project_id", projectID), zap.String("type", activityType), zap.Error(err))
	}
}
