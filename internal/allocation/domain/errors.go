package domain

import "errors"

var (
	ErrNotFound           = errors.New("payment_not_found")
	ErrInvalidID          = errors.New("invalid_id")
	ErrInvalidPaymentType = errors.New("invalid_payment_type")
	ErrForbidden          = errors.New("payment_forbidden")
	ErrDuplicateRequest   = errors.New("duplicate_request")

	// ErrAllocationInvariant signals an engine bug: a plan that would
	// over-allocate a payment or a case. The write is always aborted.
	ErrAllocationInvariant = errors.New("allocation_invariant_violation")
)
