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

type claimFixture struct {
	svc        *ClaimService
	claims     *memClaims
	warranties *memWarranties
	outbox     *memOutbox
}

func newClaimFixture(today time.Time) *claimFixture {
	f := &claimFixture{
		claims:     newMemClaims(),
		warranties: newMemWarranties(),
		outbox:     &memOutbox{},
	}
	gate := NewWarrantyService(f.warranties, newMemWarrantyTypes(testWarrantyTypes...), nil, nil, zap.NewNop())
	gate.now = func() time.Time { return today }
	f.svc = NewClaimService(f.claims, gate, f.outbox, zap.NewNop())
	f.svc.now = func() time.Time { return today }
	return f
}

func (f *claimFixture) issueWarranty(status model.WarrantyStatus, start, end time.Time) *model.Warranty {
	return f.warranties.add(model.Warranty{
		ProjectID:    4,
		ClientID:     2,
		ContractorID: 3,
		StartDate:    start,
		EndDate:      end,
		Status:       status,
	})
}

func TestClaimCreateAgainstActiveWarranty(t *testing.T) {
	ctx := context.Background()
	f := newClaimFixture(day(2024, time.June, 15))
	w := f.issueWarranty(model.WarrantyActive, day(2024, time.January, 1), day(2024, time.December, 31))

	c, err := f.svc.Create(ctx, CreateClaimInput{WarrantyID: w.ID, Title: "Leaking faucet"}, 2)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.Status != model.ClaimPending {
		t.Errorf("status = %s, want pending", c.Status)
	}
	// Party ids come from the warranty, not the request.
	if c.ClientID != w.ClientID || c.ContractorID != w.ContractorID {
		t.Errorf("claim parties = %d/%d, want %d/%d", c.ClientID, c.ContractorID, w.ClientID, w.ContractorID)
	}
	if keys := f.outbox.routingKeys(); len(keys) != 1 || keys[0] != "claim.created" {
		t.Errorf("outbox keys = %v, want [claim.created]", keys)
	}
}

func TestClaimCreateIneligiblePersistsNothing(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name   string
		today  time.Time
		status model.WarrantyStatus
	}{
		{"expired window", day(2025, time.March, 1), model.WarrantyActive},
		{"void warranty", day(2024, time.June, 15), model.WarrantyVoid},
		{"not started yet", day(2023, time.June, 15), model.WarrantyActive},
	}
	for _, tc := range cases {
		f := newClaimFixture(tc.today)
		w := f.issueWarranty(tc.status, day(2024, time.January, 1), day(2024, time.December, 31))

		_, err := f.svc.Create(ctx, CreateClaimInput{WarrantyID: w.ID, Title: "Cracked tile"}, 2)
		if !errors.Is(err, apperr.ErrIneligible) {
			t.Errorf("%s: err = %v, want ErrIneligible", tc.name, err)
		}
		if len(f.claims.byID) != 0 {
			t.Errorf("%s: %d claims persisted, want 0", tc.name, len(f.claims.byID))
		}
		if len(f.outbox.events) != 0 {
			t.Errorf("%s: %d events published, want 0", tc.name, len(f.outbox.events))
		}
	}
}

func TestClaimCreateUnknownWarranty(t *testing.T) {
	f := newClaimFixture(day(2024, time.June, 15))
	_, err := f.svc.Create(context.Background(), CreateClaimInput{WarrantyID: 42, Title: "x"}, 2)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestClaimResolutionStampsOnce(t *testing.T) {
	ctx := context.Background()
	f := newClaimFixture(day(2024, time.June, 15))
	w := f.issueWarranty(model.WarrantyActive, day(2024, time.January, 1), day(2024, time.December, 31))
	c, err := f.svc.Create(ctx, CreateClaimInput{WarrantyID: w.ID, Title: "Warped door"}, 2)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	approved, err := f.svc.UpdateStatus(ctx, c.ID, model.ClaimApproved, "replacement ordered", 3)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.ResolvedAt == nil || approved.ResolvedBy == nil || approved.ResolutionNotes == nil {
		t.Fatal("resolution stamp missing after first resolution")
	}
	firstStamp := *approved.ResolvedAt
	if *approved.ResolutionNotes != "replacement ordered" {
		t.Errorf("notes = %q", *approved.ResolutionNotes)
	}
	if keys := f.outbox.routingKeys(); len(keys) != 2 || keys[1] != "claim.resolved" {
		t.Errorf("outbox keys = %v, want [claim.created claim.resolved]", keys)
	}

	// A later resolved-status transition changes the status but never the stamp.
	f.svc.now = func() time.Time { return day(2024, time.July, 20) }
	completed, err := f.svc.UpdateStatus(ctx, c.ID, model.ClaimCompleted, "work done", 3)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.Status != model.ClaimCompleted {
		t.Errorf("status = %s, want completed", completed.Status)
	}
	if !completed.ResolvedAt.Equal(firstStamp) {
		t.Errorf("resolved_at = %s, want original stamp %s", completed.ResolvedAt, firstStamp)
	}
	if *completed.ResolutionNotes != "replacement ordered" {
		t.Errorf("notes overwritten: %q", *completed.ResolutionNotes)
	}
}

func TestClaimNonResolvedTransitionLeavesStamp(t *testing.T) {
	ctx := context.Background()
	f := newClaimFixture(day(2024, time.June, 15))
	w := f.issueWarranty(model.WarrantyActive, day(2024, time.January, 1), day(2024, time.December, 31))
	c, _ := f.svc.Create(ctx, CreateClaimInput{WarrantyID: w.ID, Title: "x"}, 2)

	got, err := f.svc.UpdateStatus(ctx, c.ID, model.ClaimInProgress, "", 3)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.ResolvedAt != nil {
		t.Error("in_progress must not stamp a resolution")
	}
}

func TestClaimAddUpdateAppends(t *testing.T) {
	ctx := context.Background()
	f := newClaimFixture(day(2024, time.June, 15))
	w := f.issueWarranty(model.WarrantyActive, day(2024, time.January, 1), day(2024, time.December, 31))
	c, _ := f.svc.Create(ctx, CreateClaimInput{WarrantyID: w.ID, Title: "x"}, 2)

	if _, err := f.svc.AddUpdate(ctx, c.ID, "technician scheduled", 3); err != nil {
		t.Fatalf("add update: %v", err)
	}
	if _, err := f.svc.AddUpdate(ctx, c.ID, "", 3); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("empty content: err = %v, want ErrValidation", err)
	}
	updates, err := f.svc.Updates(ctx, c.ID)
	if err != nil {
		t.Fatalf("list updates: %v", err)
	}
	if len(updates) != 1 || updates[0].Content != "technician scheduled" {
		t.Errorf("updates = %+v", updates)
	}
}
