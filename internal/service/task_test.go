package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Faitltd/FAIT-sub008/internal/model"
	"github.com/Faitltd/FAIT-sub008/pkg/apperr"
)

func newTaskFixture() (*TaskService, *memTasks, *stubRecalc) {
	store := newMemTasks()
	recalc := &stubRecalc{}
	svc := NewTaskService(store, &memActivities{}, recalc, zap.NewNop())
	svc.now = func() time.Time { return day(2024, time.June, 15) }
	return svc, store, recalc
}

func TestTaskCreateDefaults(t *testing.T) {
	svc, _, recalc := newTaskFixture()

	task, err := svc.Create(context.Background(), CreateTaskInput{ProjectID: 1, Title: "Order lumber"}, 7)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.Status != model.TaskTodo {
		t.Errorf("default status = %s, want todo", task.Status)
	}
	if task.Priority != model.PriorityMedium {
		t.Errorf("default priority = %s, want medium", task.Priority)
	}
	if len(recalc.calls) != 1 || recalc.calls[0] != 1 {
		t.Errorf("recalc calls = %v, want [1]", recalc.calls)
	}
}

func TestTaskCreateValidation(t *testing.T) {
	svc, _, _ := newTaskFixture()

	_, err := svc.Create(context.Background(), CreateTaskInput{ProjectID: 1}, 7)
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("missing title: err = %v, want ErrValidation", err)
	}
	_, err = svc.Create(context.Background(), CreateTaskInput{ProjectID: 1, Title: "x", Priority: "urgent"}, 7)
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("bad priority: err = %v, want ErrValidation", err)
	}
}

func TestTaskCompleteStampsCompletedAt(t *testing.T) {
	ctx := context.Background()
	svc, store, recalc := newTaskFixture()
	task := store.add(model.Task{ProjectID: 1, Title: "Install cabinets", Status: model.TaskInProgress})

	got, err := svc.UpdateStatus(ctx, task.ID, model.TaskCompleted, 7)
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if got.CompletedAt == nil || !got.CompletedAt.Equal(day(2024, time.June, 15)) {
		t.Errorf("completed_at = %v, want 2024-06-15", got.CompletedAt)
	}
	if len(recalc.calls) != 1 {
		t.Errorf("recalc calls = %v, want one call", recalc.calls)
	}
}

func TestTaskNonCompleteStatusHasNoStamp(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTaskFixture()
	task := store.add(model.Task{ProjectID: 1, Title: "x", Status: model.TaskTodo})

	got, err := svc.UpdateStatus(ctx, task.ID, model.TaskBlocked, 7)
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if got.CompletedAt != nil {
		t.Error("blocked must not stamp completed_at")
	}
}

func TestTaskRecalcFailureDoesNotFailOperation(t *testing.T) {
	ctx := context.Background()
	svc, store, recalc := newTaskFixture()
	recalc.err = errors.New("db gone")
	task := store.add(model.Task{ProjectID: 1, Title: "x", Status: model.TaskTodo})

	if _, err := svc.UpdateStatus(ctx, task.ID, model.TaskCompleted, 7); err != nil {
		t.Fatalf("update status: %v (progress refresh is best effort)", err)
	}
}

func TestTaskDeleteRefreshesProgress(t *testing.T) {
	ctx := context.Background()
	svc, store, recalc := newTaskFixture()
	task := store.add(model.Task{ProjectID: 5, Title: "x", Status: model.TaskTodo})

	if err := svc.Delete(ctx, task.ID, 7); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.FindByID(ctx, task.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("find after delete: err = %v, want ErrNotFound", err)
	}
	if len(recalc.calls) != 1 || recalc.calls[0] != 5 {
		t.Errorf("recalc calls = %v, want [5]", recalc.calls)
	}
}
