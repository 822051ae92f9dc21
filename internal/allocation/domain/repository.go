package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertPayment(ctx context.Context, db *gorm.DB, payment *Payment) error
	InsertAllocations(ctx context.Context, db *gorm.DB, allocations []Allocation) error
	FindPaymentByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Payment, error)
	FindPaymentByIdempotencyKey(ctx context.Context, db *gorm.DB, key string) (*Payment, error)
	DeletePayment(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error)

	// LockCaseCosts reads the doctor's case costs oldest first and holds
	// their rows until the transaction ends.
	LockCaseCosts(ctx context.Context, db *gorm.DB, doctorID snowflake.ID) ([]CaseCost, error)
	ListCaseCosts(ctx context.Context, db *gorm.DB, doctorID snowflake.ID) ([]CaseCost, error)

	ListAllocationsByCaseIDs(ctx context.Context, db *gorm.DB, caseIDs []snowflake.ID) ([]Allocation, error)
	ListAllocationsByPaymentIDs(ctx context.Context, db *gorm.DB, paymentIDs []snowflake.ID) ([]Allocation, error)
	ListPaymentsByDoctor(ctx context.Context, db *gorm.DB, doctorID snowflake.ID) ([]Payment, error)
	ListPayments(ctx context.Context, db *gorm.DB) ([]Payment, error)
}
