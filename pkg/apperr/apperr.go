package apperr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Sentinel errors shared by all engines. Handlers map these onto HTTP
// status codes; callers use errors.Is to branch on them.
var (
	// ErrNotFound: referenced row does not exist. No retry.
	ErrNotFound = errors.New("not found")

	// ErrValidation: required field missing or value outside its domain.
	ErrValidation = errors.New("validation failed")

	// ErrIneligible: the operation is gated by a lifecycle rule that does
	// not hold, e.g. filing a claim against a non-active warranty.
	ErrIneligible = errors.New("operation not eligible")
)

// PartialFailure marks an operation whose primary write succeeded but whose
// secondary write(s) failed: a status transition whose audit row could not
// be recorded, or a reorder that stopped partway. The primary effect stands;
// the caller should re-fetch state instead of retrying blindly.
type PartialFailure struct {
	Op  string
	Err error
}

func (e *PartialFailure) Error() string {
	return fmt.Sprintf("%s: partial failure: %v", e.Op, e.Err)
}

func (e *PartialFailure) Unwrap() error { return e.Err }

// Partial wraps err as a PartialFailure for the given operation.
func Partial(op string, err error) error {
	return &PartialFailure{Op: op, Err: err}
}

// IsPartial reports whether err is (or wraps) a PartialFailure.
func IsPartial(err error) bool {
	var pf *PartialFailure
	return errors.As(err, &pf)
}

// NotFoundf returns a wrapped ErrNotFound with context.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

// Validationf returns a wrapped ErrValidation with context.
func Validationf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrValidation)...)
}

// Ineligiblef returns a wrapped ErrIneligible with context.
func Ineligiblef(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrIneligible)...)
}

// FromScan maps pgx row-scan errors onto the taxonomy: a missing row
// becomes ErrNotFound, anything else passes through.
func FromScan(err error, entity string, id int) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return NotFoundf("%s %d", entity, id)
	}
	return err
}
