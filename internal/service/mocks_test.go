package service

import (
	"context"
	"sort"
	"time"

	"github.com/Faitltd/FAIT-sub008/internal/model"
	"github.com/Faitltd/FAIT-sub008/internal/repository"
	"github.com/Faitltd/FAIT-sub008/pkg/apperr"
)

// In-memory store implementations backing the service tests. Error fields
// force the corresponding call to fail so partial-failure paths can be
// exercised.

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// --- projects ---

type memProjects struct {
	byID      map[int]*model.Project
	nextID    int
	statusErr error
}

func newMemProjects() *memProjects {
	return &memProjects{byID: map[int]*model.Project{}}
}

func (m *memProjects) add(p model.Project) *model.Project {
	m.nextID++
	p.ID = m.nextID
	m.byID[p.ID] = &p
	return &p
}

func (m *memProjects) Insert(_ context.Context, p *model.Project) (int, error) {
	stored := m.add(*p)
	return stored.ID, nil
}

func (m *memProjects) FindByID(_ context.Context, id int) (*model.Project, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, apperr.NotFoundf("project %d", id)
	}
	cp := *p
	return &cp, nil
}

func (m *memProjects) List(_ context.Context, _ repository.ListFilter) ([]model.Project, error) {
	out := make([]model.Project, 0, len(m.byID))
	for _, p := range m.byID {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memProjects) Update(_ context.Context, id int, patch model.ProjectPatch) (*model.Project, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, apperr.NotFoundf("project %d", id)
	}
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Budget != nil {
		p.Budget = *patch.Budget
	}
	if patch.StartDate != nil {
		p.StartDate = patch.StartDate
	}
	if patch.EndDate != nil {
		p.EndDate = patch.EndDate
	}
	cp := *p
	return &cp, nil
}

func (m *memProjects) UpdateStatus(_ context.Context, id int, status model.ProjectStatus) error {
	if m.statusErr != nil {
		return m.statusErr
	}
	p, ok := m.byID[id]
	if !ok {
		return apperr.NotFoundf("project %d", id)
	}
	p.Status = status
	return nil
}

func (m *memProjects) UpdateProgress(_ context.Context, id int, progress int) error {
	p, ok := m.byID[id]
	if !ok {
		return apperr.NotFoundf("project %d", id)
	}
	p.OverallProgress = progress
	return nil
}

// --- status updates ---

type memStatusUpdates struct {
	rows      []model.ProjectStatusUpdate
	insertErr error
}

func (m *memStatusUpdates) Insert(_ context.Context, u *model.ProjectStatusUpdate) (int, error) {
	if m.insertErr != nil {
		return 0, m.insertErr
	}
	u.ID = len(m.rows) + 1
	m.rows = append(m.rows, *u)
	return u.ID, nil
}

func (m *memStatusUpdates) ListByProject(_ context.Context, projectID int, limit int) ([]model.ProjectStatusUpdate, error) {
	out := []model.ProjectStatusUpdate{}
	for i := len(m.rows) - 1; i >= 0; i-- {
		if m.rows[i].ProjectID == projectID {
			out = append(out, m.rows[i])
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// --- milestones ---

type memMilestones struct {
	byID     map[int]*model.Milestone
	nextID   int
	orderErr error
	// UpdateOrderIndex fails for this milestone id when orderErr is set.
	failOnID int
}

func newMemMilestones() *memMilestones {
	return &memMilestones{byID: map[int]*model.Milestone{}}
}

func (m *memMilestones) add(ms model.Milestone) *model.Milestone {
	m.nextID++
	ms.ID = m.nextID
	m.byID[ms.ID] = &ms
	return &ms
}

func (m *memMilestones) Insert(_ context.Context, ms *model.Milestone) (int, error) {
	stored := m.add(*ms)
	return stored.ID, nil
}

func (m *memMilestones) FindByID(_ context.Context, id int) (*model.Milestone, error) {
	ms, ok := m.byID[id]
	if !ok {
		return nil, apperr.NotFoundf("milestone %d", id)
	}
	cp := *ms
	return &cp, nil
}

func (m *memMilestones) FindByProjectID(_ context.Context, projectID int) ([]model.Milestone, error) {
	out := []model.Milestone{}
	for _, ms := range m.byID {
		if ms.ProjectID == projectID {
			out = append(out, *ms)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OrderIndex != out[j].OrderIndex {
			return out[i].OrderIndex < out[j].OrderIndex
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *memMilestones) MaxOrderIndex(_ context.Context, projectID int) (int, error) {
	max := -1
	for _, ms := range m.byID {
		if ms.ProjectID == projectID && ms.OrderIndex > max {
			max = ms.OrderIndex
		}
	}
	return max, nil
}

func (m *memMilestones) Update(_ context.Context, id int, patch model.MilestonePatch) (*model.Milestone, error) {
	ms, ok := m.byID[id]
	if !ok {
		return nil, apperr.NotFoundf("milestone %d", id)
	}
	if patch.Title != nil {
		ms.Title = *patch.Title
	}
	if patch.Description != nil {
		ms.Description = *patch.Description
	}
	if patch.Status != nil {
		ms.Status = *patch.Status
	}
	if patch.DueDate != nil {
		ms.DueDate = patch.DueDate
	}
	cp := *ms
	return &cp, nil
}

func (m *memMilestones) UpdateProgress(_ context.Context, id int, progress int, status *model.MilestoneStatus, completedDate *time.Time) (*model.Milestone, error) {
	ms, ok := m.byID[id]
	if !ok {
		return nil, apperr.NotFoundf("milestone %d", id)
	}
	ms.Progress = progress
	if status != nil {
		ms.Status = *status
	}
	if completedDate != nil {
		ms.CompletedDate = completedDate
	}
	cp := *ms
	return &cp, nil
}

func (m *memMilestones) UpdateOrderIndex(_ context.Context, projectID, id, orderIndex int) error {
	if m.orderErr != nil && id == m.failOnID {
		return m.orderErr
	}
	ms, ok := m.byID[id]
	if !ok || ms.ProjectID != projectID {
		return apperr.NotFoundf("milestone %d", id)
	}
	ms.OrderIndex = orderIndex
	return nil
}

func (m *memMilestones) Delete(_ context.Context, id int) error {
	if _, ok := m.byID[id]; !ok {
		return apperr.NotFoundf("milestone %d", id)
	}
	delete(m.byID, id)
	return nil
}

func (m *memMilestones) CountByProject(_ context.Context, projectID int) (int, int, error) {
	total, completed := 0, 0
	for _, ms := range m.byID {
		if ms.ProjectID != projectID {
			continue
		}
		total++
		if ms.Status == model.MilestoneCompleted {
			completed++
		}
	}
	return total, completed, nil
}

// --- tasks ---

type memTasks struct {
	byID   map[int]*model.Task
	nextID int
}

func newMemTasks() *memTasks {
	return &memTasks{byID: map[int]*model.Task{}}
}

func (m *memTasks) add(t model.Task) *model.Task {
	m.nextID++
	t.ID = m.nextID
	m.byID[t.ID] = &t
	return &t
}

func (m *memTasks) Insert(_ context.Context, t *model.Task) (int, error) {
	stored := m.add(*t)
	return stored.ID, nil
}

func (m *memTasks) FindByID(_ context.Context, id int) (*model.Task, error) {
	t, ok := m.byID[id]
	if !ok {
		return nil, apperr.NotFoundf("task %d", id)
	}
	cp := *t
	return &cp, nil
}

func (m *memTasks) List(_ context.Context, projectID int, _ repository.TaskFilter) ([]model.Task, error) {
	out := []model.Task{}
	for _, t := range m.byID {
		if t.ProjectID == projectID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memTasks) Update(_ context.Context, id int, patch model.TaskPatch) (*model.Task, error) {
	t, ok := m.byID[id]
	if !ok {
		return nil, apperr.NotFoundf("task %d", id)
	}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.MilestoneID != nil {
		t.MilestoneID = patch.MilestoneID
	}
	if patch.Priority != nil {
		t.Priority = *patch.Priority
	}
	if patch.AssignedTo != nil {
		t.AssignedTo = patch.AssignedTo
	}
	if patch.DueDate != nil {
		t.DueDate = patch.DueDate
	}
	cp := *t
	return &cp, nil
}

func (m *memTasks) UpdateStatus(_ context.Context, id int, status model.TaskStatus, completedAt *time.Time) (*model.Task, error) {
	t, ok := m.byID[id]
	if !ok {
		return nil, apperr.NotFoundf("task %d", id)
	}
	t.Status = status
	if completedAt != nil {
		t.CompletedAt = completedAt
	}
	cp := *t
	return &cp, nil
}

func (m *memTasks) Delete(_ context.Context, id int) error {
	if _, ok := m.byID[id]; !ok {
		return apperr.NotFoundf("task %d", id)
	}
	delete(m.byID, id)
	return nil
}

func (m *memTasks) CountByProject(_ context.Context, projectID int) (int, int, error) {
	total, completed := 0, 0
	for _, t := range m.byID {
		if t.ProjectID != projectID {
			continue
		}
		total++
		if t.Status == model.TaskCompleted {
			completed++
		}
	}
	return total, completed, nil
}

// --- warranties ---

type memWarranties struct {
	byID   map[int]*model.Warranty
	nextID int
}

func newMemWarranties() *memWarranties {
	return &memWarranties{byID: map[int]*model.Warranty{}}
}

func (m *memWarranties) add(w model.Warranty) *model.Warranty {
	m.nextID++
	w.ID = m.nextID
	m.byID[w.ID] = &w
	return &w
}

func (m *memWarranties) Insert(_ context.Context, w *model.Warranty) (int, error) {
	stored := m.add(*w)
	return stored.ID, nil
}

func (m *memWarranties) FindByID(_ context.Context, id int) (*model.Warranty, error) {
	w, ok := m.byID[id]
	if !ok {
		return nil, apperr.NotFoundf("warranty %d", id)
	}
	cp := *w
	return &cp, nil
}

func (m *memWarranties) List(_ context.Context, _ repository.ListFilter) ([]model.Warranty, error) {
	out := make([]model.Warranty, 0, len(m.byID))
	for _, w := range m.byID {
		out = append(out, *w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memWarranties) Update(_ context.Context, id int, patch model.WarrantyPatch, endDate time.Time) (*model.Warranty, error) {
	w, ok := m.byID[id]
	if !ok {
		return nil, apperr.NotFoundf("warranty %d", id)
	}
	if patch.WarrantyTypeID != nil {
		w.WarrantyTypeID = *patch.WarrantyTypeID
	}
	if patch.IsPremium != nil {
		w.IsPremium = *patch.IsPremium
	}
	if patch.AutoRenewal != nil {
		w.AutoRenewal = *patch.AutoRenewal
	}
	if patch.StartDate != nil {
		w.StartDate = *patch.StartDate
	}
	w.EndDate = endDate
	cp := *w
	return &cp, nil
}

func (m *memWarranties) UpdateStatus(_ context.Context, id int, status model.WarrantyStatus) error {
	w, ok := m.byID[id]
	if !ok {
		return apperr.NotFoundf("warranty %d", id)
	}
	w.Status = status
	return nil
}

func (m *memWarranties) MarkExpired(_ context.Context, today time.Time) ([]model.Warranty, error) {
	day := today.Truncate(24 * time.Hour)
	flipped := []model.Warranty{}
	for _, w := range m.byID {
		if w.Status == model.WarrantyActive && day.After(w.EndDate) {
			w.Status = model.WarrantyExpired
			flipped = append(flipped, *w)
		}
	}
	sort.Slice(flipped, func(i, j int) bool { return flipped[i].ID < flipped[j].ID })
	return flipped, nil
}

// --- warranty types ---

type memWarrantyTypes struct {
	byID map[int]*model.WarrantyType
}

func newMemWarrantyTypes(types ...model.WarrantyType) *memWarrantyTypes {
	m := &memWarrantyTypes{byID: map[int]*model.WarrantyType{}}
	for i := range types {
		t := types[i]
		m.byID[t.ID] = &t
	}
	return m
}

func (m *memWarrantyTypes) FindByID(_ context.Context, id int) (*model.WarrantyType, error) {
	t, ok := m.byID[id]
	if !ok {
		return nil, apperr.NotFoundf("warranty type %d", id)
	}
	cp := *t
	return &cp, nil
}

func (m *memWarrantyTypes) List(_ context.Context) ([]model.WarrantyType, error) {
	out := make([]model.WarrantyType, 0, len(m.byID))
	for _, t := range m.byID {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DurationDays < out[j].DurationDays })
	return out, nil
}

// --- claims ---

type memClaims struct {
	byID    map[int]*model.WarrantyClaim
	nextID  int
	updates []model.WarrantyClaimUpdate
}

func newMemClaims() *memClaims {
	return &memClaims{byID: map[int]*model.WarrantyClaim{}}
}

func (m *memClaims) Insert(_ context.Context, c *model.WarrantyClaim) (int, error) {
	m.nextID++
	cp := *c
	cp.ID = m.nextID
	m.byID[cp.ID] = &cp
	return cp.ID, nil
}

func (m *memClaims) FindByID(_ context.Context, id int) (*model.WarrantyClaim, error) {
	c, ok := m.byID[id]
	if !ok {
		return nil, apperr.NotFoundf("warranty claim %d", id)
	}
	cp := *c
	return &cp, nil
}

func (m *memClaims) ListByWarranty(_ context.Context, warrantyID int) ([]model.WarrantyClaim, error) {
	out := []model.WarrantyClaim{}
	for _, c := range m.byID {
		if c.WarrantyID == warrantyID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memClaims) UpdateStatus(_ context.Context, id int, status model.ClaimStatus) (*model.WarrantyClaim, error) {
	c, ok := m.byID[id]
	if !ok {
		return nil, apperr.NotFoundf("warranty claim %d", id)
	}
	c.Status = status
	cp := *c
	return &cp, nil
}

// UpdateStatusResolved mirrors the stamp-once predicate: an already
// resolved claim is not matched and reports not found.
func (m *memClaims) UpdateStatusResolved(_ context.Context, id int, status model.ClaimStatus, notes string, resolvedAt time.Time, resolvedBy int) (*model.WarrantyClaim, error) {
	c, ok := m.byID[id]
	if !ok || c.ResolvedAt != nil {
		return nil, apperr.NotFoundf("warranty claim %d", id)
	}
	c.Status = status
	c.ResolutionNotes = &notes
	at := resolvedAt
	c.ResolvedAt = &at
	by := resolvedBy
	c.ResolvedBy = &by
	cp := *c
	return &cp, nil
}

func (m *memClaims) InsertUpdate(_ context.Context, u *model.WarrantyClaimUpdate) (int, error) {
	u.ID = len(m.updates) + 1
	m.updates = append(m.updates, *u)
	return u.ID, nil
}

func (m *memClaims) ListUpdates(_ context.Context, claimID int) ([]model.WarrantyClaimUpdate, error) {
	out := []model.WarrantyClaimUpdate{}
	for _, u := range m.updates {
		if u.ClaimID == claimID {
			out = append(out, u)
		}
	}
	return out, nil
}

// --- issues ---

type memIssues struct {
	byID   map[int]*model.ProjectIssue
	nextID int
}

func newMemIssues() *memIssues {
	return &memIssues{byID: map[int]*model.ProjectIssue{}}
}

func (m *memIssues) Insert(_ context.Context, i *model.ProjectIssue) (int, error) {
	m.nextID++
	cp := *i
	cp.ID = m.nextID
	m.byID[cp.ID] = &cp
	return cp.ID, nil
}

func (m *memIssues) FindByID(_ context.Context, id int) (*model.ProjectIssue, error) {
	i, ok := m.byID[id]
	if !ok {
		return nil, apperr.NotFoundf("issue %d", id)
	}
	cp := *i
	return &cp, nil
}

func (m *memIssues) ListByProject(_ context.Context, projectID int, status model.IssueStatus) ([]model.ProjectIssue, error) {
	out := []model.ProjectIssue{}
	for _, i := range m.byID {
		if i.ProjectID != projectID {
			continue
		}
		if status != "" && i.Status != status {
			continue
		}
		out = append(out, *i)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memIssues) Update(_ context.Context, id int, patch model.IssuePatch) (*model.ProjectIssue, error) {
	i, ok := m.byID[id]
	if !ok {
		return nil, apperr.NotFoundf("issue %d", id)
	}
	if patch.Title != nil {
		i.Title = *patch.Title
	}
	if patch.Description != nil {
		i.Description = *patch.Description
	}
	if patch.Priority != nil {
		i.Priority = *patch.Priority
	}
	if patch.AssignedTo != nil {
		i.AssignedTo = patch.AssignedTo
	}
	if patch.DueDate != nil {
		i.DueDate = patch.DueDate
	}
	cp := *i
	return &cp, nil
}

func (m *memIssues) UpdateStatus(_ context.Context, id int, status model.IssueStatus) error {
	i, ok := m.byID[id]
	if !ok {
		return apperr.NotFoundf("issue %d", id)
	}
	i.Status = status
	return nil
}

func (m *memIssues) Resolve(_ context.Context, id int, notes string, resolvedAt time.Time, resolvedBy int) (*model.ProjectIssue, error) {
	i, ok := m.byID[id]
	if !ok || i.ResolvedAt != nil {
		return nil, apperr.NotFoundf("issue %d", id)
	}
	i.Status = model.IssueResolved
	i.ResolutionNotes = &notes
	at := resolvedAt
	i.ResolvedAt = &at
	by := resolvedBy
	i.ResolvedBy = &by
	cp := *i
	return &cp, nil
}

// --- timeline ---

type memTimeline struct {
	byID   map[int]*model.TimelineEvent
	nextID int
}

func newMemTimeline() *memTimeline {
	return &memTimeline{byID: map[int]*model.TimelineEvent{}}
}

func (m *memTimeline) Insert(_ context.Context, e *model.TimelineEvent) (int, error) {
	m.nextID++
	cp := *e
	cp.ID = m.nextID
	m.byID[cp.ID] = &cp
	return cp.ID, nil
}

func (m *memTimeline) ListByProject(_ context.Context, projectID int) ([]model.TimelineEvent, error) {
	out := []model.TimelineEvent{}
	for _, e := range m.byID {
		if e.ProjectID == projectID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (m *memTimeline) Update(_ context.Context, id int, patch model.TimelineEventPatch) (*model.TimelineEvent, error) {
	e, ok := m.byID[id]
	if !ok {
		return nil, apperr.NotFoundf("timeline event %d", id)
	}
	if patch.Title != nil {
		e.Title = *patch.Title
	}
	if patch.Description != nil {
		e.Description = *patch.Description
	}
	if patch.StartDate != nil {
		e.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		e.EndDate = patch.EndDate
	}
	cp := *e
	return &cp, nil
}

func (m *memTimeline) Delete(_ context.Context, id int) error {
	if _, ok := m.byID[id]; !ok {
		return apperr.NotFoundf("timeline event %d", id)
	}
	delete(m.byID, id)
	return nil
}

// --- activities ---

type memActivities struct {
	rows []model.ProjectActivity
}

func (m *memActivities) Insert(_ context.Context, a *model.ProjectActivity) (int, error) {
	a.ID = len(m.rows) + 1
	m.rows = append(m.rows, *a)
	return a.ID, nil
}

func (m *memActivities) ListByProject(_ context.Context, projectID int, limit int) ([]model.ProjectActivity, error) {
	out := []model.ProjectActivity{}
	for i := len(m.rows) - 1; i >= 0; i-- {
		if m.rows[i].ProjectID == projectID {
			out = append(out, m.rows[i])
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// --- outbox ---

type enqueued struct {
	aggregateType string
	aggregateID   int64
	routingKey    string
	payload       any
}

type memOutbox struct {
	events []enqueued
	err    error
}

func (m *memOutbox) Enqueue(_ context.Context, aggregateType string, aggregateID int64, routingKey string, payload any) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, enqueued{aggregateType, aggregateID, routingKey, payload})
	return nil
}

func (m *memOutbox) routingKeys() []string {
	keys := make([]string, len(m.events))
	for i, e := range m.events {
		keys[i] = e.routingKey
	}
	return keys
}

// --- progress recalculation ---

type stubRecalc struct {
	calls []int
	err   error
}

func (s *stubRecalc) RecalculateProgress(_ context.Context, projectID int) (int, error) {
	s.calls = append(s.calls, projectID)
	return 0, s.err
}
