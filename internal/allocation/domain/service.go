package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

type Service interface {
	RecordPayment(ctx context.Context, req RecordPaymentRequest) (*PaymentResponse, error)
	GetPayment(ctx context.Context, id string) (*PaymentResponse, error)
	DeletePayment(ctx context.Context, id string) error
	ListPaymentsByDoctor(ctx context.Context, doctorID string) ([]Payment, error)
	ListAllocationsByCaseIDs(ctx context.Context, caseIDs []string) ([]Allocation, error)
}

// RecordPaymentRequest books one payment. Expenses and payments without a
// doctor never allocate.
type RecordPaymentRequest struct {
	DoctorID        string          `json:"doctor_id"`
	Amount          decimal.Decimal `json:"amount"`
	Type            string          `json:"type"`
	Notes           *string         `json:"notes"`
	SelectedCaseIDs []string        `json:"selected_case_ids"`
	IdempotencyKey  string          `json:"-"`
}

type PaymentResponse struct {
	Payment     Payment      `json:"payment"`
	Allocations []Allocation `json:"allocations"`
}

// RequestGuard serialises retries of the same idempotency key while the
// first attempt is still in flight.
type RequestGuard interface {
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}
