package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type PaymentType string

const (
	PaymentTypePayment PaymentType = "payment"
	PaymentTypeExpense PaymentType = "expense"
)

func ParsePaymentType(value string) (PaymentType, error) {
	switch PaymentType(value) {
	case PaymentTypePayment, PaymentTypeExpense:
		return PaymentType(value), nil
	case "":
		return PaymentTypePayment, nil
	default:
		return "", ErrInvalidPaymentType
	}
}

// Payment is immutable once recorded. UnallocatedAmount is the part no case
// balance could absorb and stays on the doctor's account as credit.
type Payment struct {
	ID                snowflake.ID    `gorm:"primaryKey" json:"id"`
	DoctorID          *snowflake.ID   `gorm:"index" json:"doctor_id,omitempty"`
	Amount            decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	UnallocatedAmount decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"unallocated_amount"`
	Type              PaymentType     `gorm:"type:varchar(16);not null" json:"type"`
	AdminID           snowflake.ID    `gorm:"not null" json:"admin_id"`
	Notes             *string         `gorm:"type:text" json:"notes,omitempty"`
	IdempotencyKey    *string         `gorm:"type:varchar(255);uniqueIndex" json:"-"`
	CreatedAt         time.Time       `gorm:"not null" json:"created_at"`
}

func (Payment) TableName() string { return "payments" }

type Allocation struct {
	ID              snowflake.ID    `gorm:"primaryKey" json:"id"`
	PaymentID       snowflake.ID    `gorm:"not null;uniqueIndex:ux_alloc_payment_case" json:"payment_id"`
	CaseID          snowflake.ID    `gorm:"not null;uniqueIndex:ux_alloc_payment_case;index" json:"case_id"`
	AllocatedAmount decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"allocated_amount"`
	CreatedAt       time.Time       `gorm:"not null" json:"created_at"`
}

func (Allocation) TableName() string { return "payment_case_allocations" }

// CaseCost is the billing projection of a case row. The allocation engine
// needs nothing else about a case.
type CaseCost struct {
	ID        snowflake.ID     `gorm:"column:id" json:"case_id"`
	DoctorID  snowflake.ID     `gorm:"column:doctor_id" json:"doctor_id"`
	TotalCost *decimal.Decimal `gorm:"column:total_cost" json:"total_cost"`
	CreatedAt time.Time        `gorm:"column:created_at" json:"created_at"`
}

// Cost treats a case without a quote as costing nothing.
func (c CaseCost) Cost() decimal.Decimal {
	if c.TotalCost == nil {
		return decimal.Zero
	}
	return *c.TotalCost
}

// CaseBalance is a case cost together with everything already allocated to
// it.
type CaseBalance struct {
	CaseID    snowflake.ID
	TotalCost decimal.Decimal
	Allocated decimal.Decimal
}

// Remaining is max(0, total_cost - allocated).
func (b CaseBalance) Remaining() decimal.Decimal {
	remaining := b.TotalCost.Sub(b.Allocated)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// Balances joins case costs with their allocations, preserving case order.
func Balances(costs []CaseCost, allocations []Allocation) []CaseBalance {
	allocated := make(map[snowflake.ID]decimal.Decimal, len(costs))
	for _, a := range allocations {
		allocated[a.CaseID] = allocated[a.CaseID].Add(a.AllocatedAmount)
	}

	out := make([]CaseBalance, 0, len(costs))
	for _, c := range costs {
		out = append(out, CaseBalance{
			CaseID:    c.ID,
			TotalCost: c.Cost(),
			Allocated: allocated[c.ID],
		})
	}
	return out
}
