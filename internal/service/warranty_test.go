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

var testWarrantyTypes = []model.WarrantyType{
	{ID: 1, Name: "Standard", DurationDays: 365, PremiumDurationDays: 730},
	{ID: 2, Name: "Structural", DurationDays: 3650},
}

type warrantyFixture struct {
	svc        *WarrantyService
	warranties *memWarranties
	outbox     *memOutbox
}

func newWarrantyFixture(today time.Time) *warrantyFixture {
	f := &warrantyFixture{
		warranties: newMemWarranties(),
		outbox:     &memOutbox{},
	}
	f.svc = NewWarrantyService(f.warranties, newMemWarrantyTypes(testWarrantyTypes...), nil, f.outbox, zap.NewNop())
	f.svc.now = func() time.Time { return today }
	return f
}

func TestWarrantyCreateDerivesEndDate(t *testing.T) {
	f := newWarrantyFixture(day(2024, time.January, 1))

	w, err := f.svc.Create(context.Background(), CreateWarrantyInput{
		ProjectID:      1,
		ClientID:       2,
		WarrantyTypeID: 1,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	// 365 calendar days from 2024-01-01 lands on 2024-12-31 (leap year).
	if want := day(2024, time.December, 31); !w.EndDate.Equal(want) {
		t.Errorf("end_date = %s, want %s", w.EndDate, want)
	}
	if w.Status != model.WarrantyActive {
		t.Errorf("status = %s, want active", w.Status)
	}
}

func TestWarrantyCreatePremiumUsesPremiumDuration(t *testing.T) {
	f := newWarrantyFixture(day(2024, time.January, 1))

	w, err := f.svc.Create(context.Background(), CreateWarrantyInput{
		ProjectID:      1,
		WarrantyTypeID: 1,
		IsPremium:      true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if want := day(2024, time.January, 1).AddDate(0, 0, 730); !w.EndDate.Equal(want) {
		t.Errorf("end_date = %s, want %s", w.EndDate, want)
	}
}

func TestWarrantyCreateUnknownTypeRejected(t *testing.T) {
	f := newWarrantyFixture(day(2024, time.January, 1))

	_, err := f.svc.Create(context.Background(), CreateWarrantyInput{ProjectID: 1, WarrantyTypeID: 99})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestWarrantyUpdateRecomputesEndDate(t *testing.T) {
	ctx := context.Background()
	f := newWarrantyFixture(day(2024, time.March, 1))
	w := f.warranties.add(model.Warranty{
		ProjectID:      1,
		WarrantyTypeID: 1,
		StartDate:      day(2024, time.January, 1),
		EndDate:        day(2024, time.December, 31),
		Status:         model.WarrantyActive,
	})

	premium := true
	got, err := f.svc.Update(ctx, w.ID, model.WarrantyPatch{IsPremium: &premium})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if want := day(2024, time.January, 1).AddDate(0, 0, 730); !got.EndDate.Equal(want) {
		t.Errorf("end_date = %s, want %s (recomputed from premium duration)", got.EndDate, want)
	}
}

func TestWarrantyUpdateExplicitEndDateSuppressesRecompute(t *testing.T) {
	ctx := context.Background()
	f := newWarrantyFixture(day(2024, time.March, 1))
	w := f.warranties.add(model.Warranty{
		ProjectID:      1,
		WarrantyTypeID: 1,
		StartDate:      day(2024, time.January, 1),
		EndDate:        day(2024, time.December, 31),
		Status:         model.WarrantyActive,
	})

	premium := true
	override := day(2025, time.June, 30)
	got, err := f.svc.Update(ctx, w.ID, model.WarrantyPatch{IsPremium: &premium, EndDate: &override})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !got.EndDate.Equal(override) {
		t.Errorf("end_date = %s, want explicit override %s", got.EndDate, override)
	}
}

func TestWarrantyEligibilityWindow(t *testing.T) {
	ctx := context.Background()
	issue := func(f *warrantyFixture, status model.WarrantyStatus) int {
		w := f.warranties.add(model.Warranty{
			ProjectID:      1,
			WarrantyTypeID: 1,
			StartDate:      day(2024, time.January, 1),
			EndDate:        day(2024, time.December, 31),
			Status:         status,
		})
		return w.ID
	}

	cases := []struct {
		name   string
		today  time.Time
		status model.WarrantyStatus
		want   bool
	}{
		{"inside window", day(2024, time.June, 15), model.WarrantyActive, true},
		{"first day", day(2024, time.January, 1), model.WarrantyActive, true},
		{"last day inclusive", day(2024, time.December, 31), model.WarrantyActive, true},
		{"day after end", day(2025, time.January, 1), model.WarrantyActive, false},
		{"before start", day(2023, time.December, 31), model.WarrantyActive, false},
		{"void inside window", day(2024, time.June, 15), model.WarrantyVoid, false},
	}
	for _, tc := range cases {
		f := newWarrantyFixture(tc.today)
		id := issue(f, tc.status)
		got, err := f.svc.IsEligibleForClaim(ctx, id)
		if err != nil {
			t.Fatalf("%s: eligibility: %v", tc.name, err)
		}
		if got != tc.want {
			t.Errorf("%s: eligible = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestWarrantyGetDerivesExpiredStatus(t *testing.T) {
	f := newWarrantyFixture(day(2025, time.February, 1))
	w := f.warranties.add(model.Warranty{
		ProjectID:      1,
		WarrantyTypeID: 1,
		StartDate:      day(2024, time.January, 1),
		EndDate:        day(2024, time.December, 31),
		Status:         model.WarrantyActive,
	})

	got, err := f.svc.Get(context.Background(), w.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != model.WarrantyExpired {
		t.Errorf("derived status = %s, want expired", got.Status)
	}
	// The stored row stays active until the sweep touches it.
	stored, _ := f.warranties.FindByID(context.Background(), w.ID)
	if stored.Status != model.WarrantyActive {
		t.Errorf("stored status = %s, want active", stored.Status)
	}
}

func TestWarrantyExpireOverdueSweep(t *testing.T) {
	ctx := context.Background()
	f := newWarrantyFixture(day(2025, time.February, 1))
	overdue := f.warranties.add(model.Warranty{
		ProjectID: 1, WarrantyTypeID: 1,
		StartDate: day(2024, time.January, 1),
		EndDate:   day(2024, time.December, 31),
		Status:    model.WarrantyActive,
	})
	f.warranties.add(model.Warranty{
		ProjectID: 2, WarrantyTypeID: 2,
		StartDate: day(2024, time.January, 1),
		EndDate:   day(2033, time.December, 29),
		Status:    model.WarrantyActive,
	})
	voided := f.warranties.add(model.Warranty{
		ProjectID: 3, WarrantyTypeID: 1,
		StartDate: day(2024, time.January, 1),
		EndDate:   day(2024, time.June, 30),
		Status:    model.WarrantyVoid,
	})

	n, err := f.svc.ExpireOverdue(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 1 {
		t.Fatalf("expired count = %d, want 1", n)
	}
	got, _ := f.warranties.FindByID(ctx, overdue.ID)
	if got.Status != model.WarrantyExpired {
		t.Errorf("overdue warranty status = %s, want expired", got.Status)
	}
	got, _ = f.warranties.FindByID(ctx, voided.ID)
	if got.Status != model.WarrantyVoid {
		t.Errorf("void warranty status = %s, want void untouched", got.Status)
	}
	if keys := f.outbox.routingKeys(); len(keys) != 1 || keys[0] != "warranty.expired" {
		t.Errorf("outbox keys = %v, want [warranty.expired]", keys)
	}
}

func TestWarrantyVoidIsSticky(t *testing.T) {
	ctx := context.Background()
	f := newWarrantyFixture(day(2024, time.June, 15))
	w := f.warranties.add(model.Warranty{
		ProjectID: 1, WarrantyTypeID: 1,
		StartDate: day(2024, time.January, 1),
		EndDate:   day(2024, time.December, 31),
		Status:    model.WarrantyActive,
	})

	if err := f.svc.Void(ctx, w.ID); err != nil {
		t.Fatalf("void: %v", err)
	}
	got, err := f.svc.Get(ctx, w.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != model.WarrantyVoid {
		t.Errorf("status = %s, want void", got.Status)
	}
}
