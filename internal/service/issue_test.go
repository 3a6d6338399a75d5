package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Faitltd/FAIT-sub008/internal/model"
)

func TestIssueResolveStampsOnce(t *testing.T) {
	ctx := context.Background()
	store := newMemIssues()
	svc := NewIssueService(store, &memActivities{}, zap.NewNop())
	svc.now = func() time.Time { return day(2024, time.June, 15) }

	issue, err := svc.Create(ctx, CreateIssueInput{ProjectID: 1, Title: "Cracked slab"}, 2)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if issue.Status != model.IssueOpen {
		t.Errorf("status = %s, want open", issue.Status)
	}

	resolved, err := svc.Resolve(ctx, issue.ID, "re-poured section", 3)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.Status != model.IssueResolved {
		t.Errorf("status = %s, want resolved", resolved.Status)
	}
	if resolved.ResolvedAt == nil || resolved.ResolvedBy == nil || *resolved.ResolvedBy != 3 {
		t.Error("resolution stamp missing")
	}

	// Closing afterwards keeps the stamp.
	if err := svc.UpdateStatus(ctx, issue.ID, model.IssueClosed, 3); err != nil {
		t.Fatalf("close: %v", err)
	}
	got, _ := store.FindByID(ctx, issue.ID)
	if got.Status != model.IssueClosed {
		t.Errorf("status = %s, want closed", got.Status)
	}
	if got.ResolvedAt == nil || !got.ResolvedAt.Equal(day(2024, time.June, 15)) {
		t.Errorf("resolved_at = %v, want original stamp", got.ResolvedAt)
	}
}

func TestIssueListFiltersByStatus(t *testing.T) {
	ctx := context.Background()
	store := newMemIssues()
	svc := NewIssueService(store, &memActivities{}, zap.NewNop())

	if _, err := svc.Create(ctx, CreateIssueInput{ProjectID: 1, Title: "a"}, 2); err != nil {
		t.Fatalf("create: %v", err)
	}
	b, err := svc.Create(ctx, CreateIssueInput{ProjectID: 1, Title: "b"}, 2)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Resolve(ctx, b.ID, "fixed", 3); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	open, err := svc.ListByProject(ctx, 1, model.IssueOpen)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(open) != 1 || open[0].Title != "a" {
		t.Errorf("open issues = %+v, want just a", open)
	}
	all, err := svc.ListByProject(ctx, 1, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("all issues = %d, want 2", len(all))
	}
}
