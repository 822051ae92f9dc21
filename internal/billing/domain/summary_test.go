package domain

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	allocationdomain "github.com/railzwaylabs/aligntrack/internal/allocation/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func cost(id int64, total string) allocationdomain.CaseCost {
	c := allocationdomain.CaseCost{ID: snowflake.ID(id)}
	if total != "" {
		v := d(total)
		c.TotalCost = &v
	}
	return c
}

func payment(typ allocationdomain.PaymentType, amount, unallocated string, at time.Time) allocationdomain.Payment {
	return allocationdomain.Payment{
		Type:              typ,
		Amount:            d(amount),
		UnallocatedAmount: d(unallocated),
		CreatedAt:         at,
	}
}

func TestRemainingAmount(t *testing.T) {
	costs := []allocationdomain.CaseCost{cost(1, "100"), cost(2, "50"), cost(3, ""), cost(4, "0")}
	allocations := []allocationdomain.Allocation{
		{CaseID: 1, AllocatedAmount: d("60")},
		{CaseID: 2, AllocatedAmount: d("70")},
	}

	assert.True(t, d("40").Equal(RemainingAmount(costs, allocations)))
	assert.True(t, RemainingAmount(nil, nil).IsZero())
}

func TestSummarizeTotals(t *testing.T) {
	now := time.Now().UTC()
	totals := SummarizeTotals([]allocationdomain.Payment{
		payment(allocationdomain.PaymentTypePayment, "100", "0", now),
		payment(allocationdomain.PaymentTypePayment, "50.50", "0", now),
		payment(allocationdomain.PaymentTypeExpense, "30.25", "30.25", now),
	})

	assert.True(t, d("150.50").Equal(totals.TotalRevenue))
	assert.True(t, d("30.25").Equal(totals.TotalExpenses))
	assert.True(t, d("120.25").Equal(totals.NetEarnings))

	empty := SummarizeTotals(nil)
	assert.True(t, empty.NetEarnings.IsZero())
}

func TestLastPaymentDateIgnoresExpenses(t *testing.T) {
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	payments := []allocationdomain.Payment{
		payment(allocationdomain.PaymentTypePayment, "10", "0", base),
		payment(allocationdomain.PaymentTypeExpense, "10", "10", base.Add(48*time.Hour)),
		payment(allocationdomain.PaymentTypePayment, "10", "0", base.Add(24*time.Hour)),
	}

	last := LastPaymentDate(payments)
	require.NotNil(t, last)
	assert.True(t, base.Add(24*time.Hour).Equal(*last))

	assert.Nil(t, LastPaymentDate(payments[1:2]))
}

func TestSummarizeDoctorIsPure(t *testing.T) {
	at := time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)
	costs := []allocationdomain.CaseCost{cost(1, "100"), cost(2, "50"), cost(3, "")}
	payments := []allocationdomain.Payment{
		payment(allocationdomain.PaymentTypePayment, "170", "20", at),
	}
	allocations := []allocationdomain.Allocation{
		{CaseID: 1, AllocatedAmount: d("100")},
		{CaseID: 2, AllocatedAmount: d("50")},
	}

	first := SummarizeDoctor(7001, costs, payments, allocations)
	second := SummarizeDoctor(7001, costs, payments, allocations)
	assert.Equal(t, first, second)

	assert.True(t, first.RemainingAmount.IsZero())
	assert.True(t, d("150").Equal(first.TotalBilled))
	assert.True(t, d("170").Equal(first.TotalPaid))
	assert.True(t, d("20").Equal(first.Credit))
	require.Len(t, first.Cases, 3)
	assert.Equal(t, allocationdomain.PaymentStatusPaid, first.Cases[0].Status)
	assert.Equal(t, allocationdomain.PaymentStatusNotApplicable, first.Cases[2].Status)
}
