package domain

import "errors"

var (
	ErrInvalidID = errors.New("invalid_doctor_id")
	ErrForbidden = errors.New("billing_forbidden")
)
