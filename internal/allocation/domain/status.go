package domain

import (
	"github.com/railzwaylabs/aligntrack/internal/money"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusNotApplicable PaymentStatus = "not_applicable"
	PaymentStatusUnpaid        PaymentStatus = "unpaid"
	PaymentStatusPartiallyPaid PaymentStatus = "partially_paid"
	PaymentStatusPaid          PaymentStatus = "paid"
)

type PaymentStatusResult struct {
	Status     PaymentStatus   `json:"status"`
	TotalCost  decimal.Decimal `json:"total_cost"`
	TotalPaid  decimal.Decimal `json:"total_paid"`
	Remaining  decimal.Decimal `json:"remaining"`
	Percentage decimal.Decimal `json:"payment_percentage"`
}

// ClassifyPaymentStatus buckets a case by how much of its cost is covered.
func ClassifyPaymentStatus(totalCost, totalPaid decimal.Decimal) PaymentStatusResult {
	result := PaymentStatusResult{
		TotalCost: totalCost,
		TotalPaid: totalPaid,
	}

	switch {
	case !totalCost.IsPositive():
		result.Status = PaymentStatusNotApplicable
		result.Remaining = decimal.Zero
		result.Percentage = decimal.Zero
	case !totalPaid.IsPositive():
		result.Status = PaymentStatusUnpaid
		result.Remaining = totalCost
		result.Percentage = decimal.Zero
	case totalPaid.LessThan(totalCost):
		result.Status = PaymentStatusPartiallyPaid
		result.Remaining = totalCost.Sub(totalPaid)
		result.Percentage = money.Percentage(totalPaid, totalCost)
	default:
		result.Status = PaymentStatusPaid
		result.Remaining = decimal.Zero
		result.Percentage = decimal.NewFromInt(100)
	}
	return result
}
