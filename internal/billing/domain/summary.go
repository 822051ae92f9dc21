package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	allocationdomain "github.com/railzwaylabs/aligntrack/internal/allocation/domain"
	"github.com/shopspring/decimal"
)

type Service interface {
	Totals(ctx context.Context) (Totals, error)
	DoctorSummary(ctx context.Context, doctorID string) (*DoctorSummary, error)
}

type Totals struct {
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	NetEarnings   decimal.Decimal `json:"net_earnings"`
}

type CaseSummary struct {
	CaseID snowflake.ID `json:"case_id"`
	allocationdomain.PaymentStatusResult
}

type DoctorSummary struct {
	DoctorID        snowflake.ID    `json:"doctor_id"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	TotalBilled     decimal.Decimal `json:"total_billed"`
	TotalPaid       decimal.Decimal `json:"total_paid"`
	Credit          decimal.Decimal `json:"credit"`
	LastPaymentDate *time.Time      `json:"last_payment_date,omitempty"`
	Cases           []CaseSummary   `json:"cases"`
}

// RemainingAmount sums what the doctor still owes over cases with a positive
// cost.
func RemainingAmount(costs []allocationdomain.CaseCost, allocations []allocationdomain.Allocation) decimal.Decimal {
	total := decimal.Zero
	for _, b := range allocationdomain.Balances(costs, allocations) {
		if !b.TotalCost.IsPositive() {
			continue
		}
		total = total.Add(b.Remaining())
	}
	return total
}

func SummarizeTotals(payments []allocationdomain.Payment) Totals {
	totals := Totals{
		TotalRevenue:  decimal.Zero,
		TotalExpenses: decimal.Zero,
	}
	for _, p := range payments {
		switch p.Type {
		case allocationdomain.PaymentTypePayment:
			totals.TotalRevenue = totals.TotalRevenue.Add(p.Amount)
		case allocationdomain.PaymentTypeExpense:
			totals.TotalExpenses = totals.TotalExpenses.Add(p.Amount)
		}
	}
	totals.NetEarnings = totals.TotalRevenue.Sub(totals.TotalExpenses)
	return totals
}

// LastPaymentDate is the newest type=payment row, nil when there is none.
func LastPaymentDate(payments []allocationdomain.Payment) *time.Time {
	var last *time.Time
	for i := range payments {
		p := payments[i]
		if p.Type != allocationdomain.PaymentTypePayment {
			continue
		}
		if last == nil || p.CreatedAt.After(*last) {
			created := p.CreatedAt
			last = &created
		}
	}
	return last
}

// SummarizeDoctor folds one doctor's rows into their account view. It is a
// pure function of its inputs.
func SummarizeDoctor(
	doctorID snowflake.ID,
	costs []allocationdomain.CaseCost,
	payments []allocationdomain.Payment,
	allocations []allocationdomain.Allocation,
) DoctorSummary {
	summary := DoctorSummary{
		DoctorID:        doctorID,
		RemainingAmount: RemainingAmount(costs, allocations),
		TotalBilled:     decimal.Zero,
		TotalPaid:       decimal.Zero,
		Credit:          decimal.Zero,
		LastPaymentDate: LastPaymentDate(payments),
		Cases:           make([]CaseSummary, 0, len(costs)),
	}

	for _, b := range allocationdomain.Balances(costs, allocations) {
		if b.TotalCost.IsPositive() {
			summary.TotalBilled = summary.TotalBilled.Add(b.TotalCost)
		}
		summary.Cases = append(summary.Cases, CaseSummary{
			CaseID:              b.CaseID,
			PaymentStatusResult: allocationdomain.ClassifyPaymentStatus(b.TotalCost, b.Allocated),
		})
	}

	for _, p := range payments {
		if p.Type != allocationdomain.PaymentTypePayment {
			continue
		}
		summary.TotalPaid = summary.TotalPaid.Add(p.Amount)
		summary.Credit = summary.Credit.Add(p.UnallocatedAmount)
	}
	return summary
}
