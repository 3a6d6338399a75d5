package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
)

func TestWrappersMatchSentinels(t *testing.T) {
	cases := []struct {
		err      error
		sentinel error
	}{
		{NotFoundf("project %d", 7), ErrNotFound},
		{Validationf("title is required"), ErrValidation},
		{Ineligiblef("warranty %d is expired", 3), ErrIneligible},
	}
	for _, tc := range cases {
		if !errors.Is(tc.err, tc.sentinel) {
			t.Errorf("%v does not match %v", tc.err, tc.sentinel)
		}
	}
}

func TestPartialFailureUnwraps(t *testing.T) {
	cause := errors.New("disk full")
	err := Partial("project status audit", cause)

	if !IsPartial(err) {
		t.Fatal("IsPartial = false")
	}
	if !errors.Is(err, cause) {
		t.Error("cause not reachable through Unwrap")
	}

	wrapped := fmt.Errorf("transition: %w", err)
	if !IsPartial(wrapped) {
		t.Error("IsPartial should see through wrapping")
	}
}

func TestIsPartialRejectsPlainErrors(t *testing.T) {
	if IsPartial(errors.New("boom")) {
		t.Error("plain error reported as partial")
	}
	if IsPartial(nil) {
		t.Error("nil reported as partial")
	}
}

func TestFromScan(t *testing.T) {
	if err := FromScan(nil, "warranty", 1); err != nil {
		t.Errorf("nil in, got %v", err)
	}
	if err := FromScan(pgx.ErrNoRows, "warranty", 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("ErrNoRows should map to ErrNotFound, got %v", err)
	}
	passthrough := errors.New("connection reset")
	if err := FromScan(passthrough, "warranty", 1); !errors.Is(err, passthrough) {
		t.Errorf("unexpected mapping: %v", err)
	}
}
