package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound               = errors.New("case_not_found")
	ErrInvalidID              = errors.New("invalid_case_id")
	ErrInvalidStatus          = errors.New("invalid_status")
	ErrInvalidStateTransition = errors.New("invalid_state_transition")
	ErrForbidden              = errors.New("case_forbidden")
	ErrHasAllocations         = errors.New("case_has_allocations")
	ErrHasRefinements         = errors.New("case_has_refinements")

	// ErrStaleState means the row changed status between read and write.
	// Callers may reload and retry.
	ErrStaleState = fmt.Errorf("%w: stale_state", ErrInvalidStateTransition)

	// ErrRefinementConflict means a concurrent request took the same
	// refinement number.
	ErrRefinementConflict = fmt.Errorf("%w: refinement_number_taken", ErrInvalidStateTransition)
)
