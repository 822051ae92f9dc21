package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AllocationShare is one payment's share of a case balance.
type AllocationShare struct {
	ID        snowflake.ID    `gorm:"column:id"`
	PaymentID snowflake.ID    `gorm:"column:payment_id"`
	Amount    decimal.Decimal `gorm:"column:allocated_amount"`
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, c *Case) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Case, error)
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Case, error)
	ListByDoctor(ctx context.Context, db *gorm.DB, doctorID snowflake.ID) ([]Case, error)
	// UpdateIfStatus applies fields only while the row still has the
	// expected status and returns the affected row count.
	UpdateIfStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, expected Status, fields map[string]any) (int64, error)
	MaxRefinementNumber(ctx context.Context, db *gorm.DB, parentID snowflake.ID) (int, error)
	CountAllocations(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error)
	// LockAllocations returns the case's allocations newest first.
	LockAllocations(ctx context.Context, db *gorm.DB, id snowflake.ID) ([]AllocationShare, error)
	// ShrinkAllocation sets an allocation to amount, deleting it at zero.
	ShrinkAllocation(ctx context.Context, db *gorm.DB, allocationID snowflake.ID, amount decimal.Decimal) error
	// CreditPayment adds amount to the payment's unallocated credit.
	CreditPayment(ctx context.Context, db *gorm.DB, paymentID snowflake.ID, amount decimal.Decimal) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error)
}
