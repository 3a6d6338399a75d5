package model

import (
	"testing"
	"time"
)

func TestStatusValidity(t *testing.T) {
	if !ProjectInProgress.Valid() || ProjectStatus("archived").Valid() {
		t.Error("ProjectStatus.Valid")
	}
	if !MilestoneOnHold.Valid() || MilestoneStatus("done").Valid() {
		t.Error("MilestoneStatus.Valid")
	}
	if !TaskBlocked.Valid() || TaskStatus("paused").Valid() {
		t.Error("TaskStatus.Valid")
	}
	if !PriorityHigh.Valid() || TaskPriority("urgent").Valid() {
		t.Error("TaskPriority.Valid")
	}
	if !WarrantyVoid.Valid() || WarrantyStatus("lapsed").Valid() {
		t.Error("WarrantyStatus.Valid")
	}
	if !ClaimInProgress.Valid() || ClaimStatus("closed").Valid() {
		t.Error("ClaimStatus.Valid")
	}
	if !IssueClosed.Valid() || IssueStatus("fixed").Valid() {
		t.Error("IssueStatus.Valid")
	}
}

func TestClaimStatusResolved(t *testing.T) {
	resolved := []ClaimStatus{ClaimApproved, ClaimRejected, ClaimCompleted}
	for _, s := range resolved {
		if !s.Resolved() {
			t.Errorf("%s should be resolved", s)
		}
	}
	open := []ClaimStatus{ClaimPending, ClaimInProgress, ClaimCancelled}
	for _, s := range open {
		if s.Resolved() {
			t.Errorf("%s should not be resolved", s)
		}
	}
}

func TestWarrantyDerivedStatus(t *testing.T) {
	base := Warranty{
		Status:    WarrantyActive,
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
	}

	if got := base.DerivedStatus(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)); got != WarrantyActive {
		t.Errorf("inside window: %s", got)
	}
	if got := base.DerivedStatus(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)); got != WarrantyExpired {
		t.Errorf("past end date: %s", got)
	}

	voided := base
	voided.Status = WarrantyVoid
	if got := voided.DerivedStatus(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)); got != WarrantyVoid {
		t.Errorf("void must be sticky past expiry: %s", got)
	}
}

func TestWarrantyInWindowInclusive(t *testing.T) {
	w := Warranty{
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	cases := []struct {
		day  time.Time
		want bool
	}{
		{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), true},
		{time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), false},
		{time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), false},
	}
	for _, tc := range cases {
		if got := w.InWindow(tc.day); got != tc.want {
			t.Errorf("InWindow(%s) = %v, want %v", tc.day.Format("2006-01-02"), got, tc.want)
		}
	}
}
