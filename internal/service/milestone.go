package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faitltd/FAIT-sub008/contracts/mq"
	"github.com/Faitltd/FAIT-sub008/internal/model"
	"github.com/Faitltd/FAIT-sub008/pkg/apperr"
	"github.com/Faitltd/FAIT-sub008/pkg/metrics"
)

// MilestoneService 负责里程碑的创建、进度推进与排序。
type MilestoneService struct {
	milestones MilestoneStore
	activities ActivityStore
	outbox     EventOutbox
	logger     *zap.Logger
	now        func() time.Time
}

func NewMilestoneService(milestones MilestoneStore, activities ActivityStore, outbox EventOutbox, logger *zap.Logger) *MilestoneService {
	return &MilestoneService{
		milestones: milestones,
		activities: activities,
		outbox:     outbox,
		logger:     logger,
		now:        time.Now,
	}
}

type CreateMilestoneInput struct {
	ProjectID   int
	Title       string
	Description string
	Status      model.MilestoneStatus
	DueDate     *time.Time
}

// Create appends a milestone at the end of the project's ordering:
// order_index = max(existing) + 1, or 0 for the first milestone.
func (s *MilestoneService) Create(ctx context.Context, in CreateMilestoneInput, actorID int) (*model.Milestone, error) {
	if in.ProjectID <= 0 {
		return nil, apperr.Validationf("project_id is required")
	}
	if in.Title == "" {
		return nil, apperr.Validationf("title is required")
	}
	if in.Status == "" {
		in.Status = model.MilestonePending
	}
	if !in.Status.Valid() {
		return nil, apperr.Validationf("invalid milestone status %q", in.Status)
	}

	maxIdx, err := s.milestones.MaxOrderIndex(ctx, in.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("max order index: %w", err)
	}

	m := &model.Milestone{
		ProjectID:   in.ProjectID,
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		OrderIndex:  maxIdx + 1,
		DueDate:     in.DueDate,
	}
	if in.Status == model.MilestoneCompleted {
		m.Progress = 100
		today := s.now()
		m.CompletedDate = &today
	}

	id, err := s.milestones.Insert(ctx, m)
	if err != nil {
		s.logger.Error("create milestone failed", zap.Int("project_id", in.ProjectID), zap.Error(err))
		return nil, err
	}
	m.ID = id
	s.logger.Info("milestone created",
		zap.Int("milestone_id", id),
		zap.Int("project_id", in.ProjectID),
		zap.Int("order_index", m.OrderIndex))

	s.recordActivity(ctx, in.ProjectID, actorID, "create", id, fmt.Sprintf("Milestone %q created", in.Title))
	return m, nil
}

func (s *MilestoneService) Get(ctx context.Context, id int) (*model.Milestone, error) {
	return s.milestones.FindByID(ctx, id)
}

// ListByProject returns the project's milestones in order_index order.
func (s *MilestoneService) ListByProject(ctx context.Context, projectID int) ([]model.Milestone, error) {
	return s.milestones.FindByProjectID(ctx, projectID)
}

func (s *MilestoneService) Update(ctx context.Context, id int, patch model.MilestonePatch, actorID int) (*model.Milestone, error) {
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, apperr.Validationf("invalid milestone status %q", *patch.Status)
	}
	m, err := s.milestones.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.recordActivity(ctx, m.ProjectID, actorID, "update", id, fmt.Sprintf("Milestone %q updated", m.Title))
	return m, nil
}

// UpdateProgress clamps progress into [0,100] and couples status to it:
// 100 marks the milestone completed and stamps completed_date, anything in
// (0,100) forces in_progress, and 0 leaves the status untouched.
func (s *MilestoneService) UpdateProgress(ctx context.Context, id int, progress int, actorID int) (*model.Milestone, error) {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}

	var status *model.MilestoneStatus
	var completedDate *time.Time
	switch {
	case progress == 100:
		st := model.MilestoneCompleted
		status = &st
		today := s.now()
		completedDate = &today
	case progress > 0:
		st := model.MilestoneInProgress
		status = &st
	}

	m, err := s.milestones.UpdateProgress(ctx, id, progress, status, completedDate)
	if err != nil {
		return nil, err
	}
	s.logger.Info("milestone progress updated",
		zap.Int("milestone_id", id),
		zap.Int("progress", progress),
		zap.String("status", string(m.Status)))

	if progress == 100 {
		s.publish(ctx, "milestone", int64(id), "milestone.completed", mq.MilestoneCompletedPayload{
			MilestoneID:   id,
			ProjectID:     m.ProjectID,
			Title:         m.Title,
			CompletedDate: s.now(),
		})
		s.recordActivity(ctx, m.ProjectID, actorID, "status_change", id, fmt.Sprintf("Milestone %q completed", m.Title))
	}
	return m, nil
}

// Reorder rewrites order_index for every milestone in orderedIDs to its
// position in the slice. Updates are applied one at a time; if one fails
// the earlier writes stand, and the re-fetched (possibly mixed) ordering
// is returned together with a PartialFailure so the caller sees the
// authoritative state.
func (s *MilestoneService) Reorder(ctx context.Context, projectID int, orderedIDs []int, actorID int) ([]model.Milestone, error) {
	if len(orderedIDs) == 0 {
		return nil, apperr.Validationf("ordered ids are required")
	}
	seen := make(map[int]struct{}, len(orderedIDs))
	for _, id := range orderedIDs {
		if _, dup := seen[id]; dup {
			return nil, apperr.Validationf("duplicate milestone id %d in ordering", id)
		}
		seen[id] = struct{}{}
	}

	for position, id := range orderedIDs {
		if err := s.milestones.UpdateOrderIndex(ctx, projectID, id, position); err != nil {
			metrics.ReorderFailureCount.Inc()
			s.logger.Error("milestone reorder failed midway",
				zap.Int("project_id", projectID),
				zap.Int("milestone_id", id),
				zap.Int("position", position),
				zap.Error(err))
			current, listErr := s.milestones.FindByProjectID(ctx, projectID)
			if listErr != nil {
				return nil, fmt.Errorf("reorder milestone %d: %w (list after failure: %v)", id, err, listErr)
			}
			return current, apperr.Partial(fmt.Sprintf("reorder milestone %d", id), err)
		}
	}

	ordered, err := s.milestones.FindByProjectID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("milestones reordered", zap.Int("project_id", projectID), zap.Int("count", len(orderedIDs)))
	s.recordActivity(ctx, projectID, actorID, "update", 0, fmt.Sprintf("%d milestones reordered", len(orderedIDs)))
	return ordered, nil
}

// Delete removes a milestone without renumbering its siblings; ordering
// stays monotonic with gaps until the next Reorder.
func (s *MilestoneService) Delete(ctx context.Context, id int, actorID int) error {
	m, err := s.milestones.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.milestones.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("milestone deleted", zap.Int("milestone_id", id), zap.Int("project_id", m.ProjectID))
	s.recordActivity(ctx, m.ProjectID, actorID, "delete", id, fmt.Sprintf("Milestone %q deleted", m.Title))
	return nil
}

func (s *MilestoneService) recordActivity(ctx context.Context, projectID, actorID int, activityType string, entityID int, description string) {
	if s.activities == nil {
		return
	}
	_, err := s.activities.Insert(ctx, &model.ProjectActivity{
		ProjectID:    projectID,
		UserID:       actorID,
		ActivityType: activityType,
		EntityType:   "milestone",
		EntityID:     entityID,
		Description:  description,
	})
	if err != nil {
		s.logger.Warn("record activity failed", zap.Int("project_id", projectID), zap.String("type", activityType), zap.Error(err))
	}
}

func (s *MilestoneService) publish(ctx context.Context, aggregateType string, aggregateID int64, routingKey string, payload any) {
	if s.outbox == nil {
		return
	}
	if err := s.outbox.Enqueue(ctx, aggregateType, aggregateID, routingKey, payload); err != nil {
		s.logger.Warn("enqueue event failed", zap.String("routing_key", routingKey), zap.Error(err))
	}
}
