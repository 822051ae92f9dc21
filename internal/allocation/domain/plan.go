package domain

import (
	"fmt"
	"sort"

	"github.com/bwmarrin/snowflake"
	"github.com/railzwaylabs/aligntrack/internal/money"
	"github.com/shopspring/decimal"
)

type Share struct {
	CaseID snowflake.ID    `json:"case_id"`
	Amount decimal.Decimal `json:"amount"`
}

// Plan is the outcome of splitting one payment. Shares follow the order of
// the balances they were planned from.
type Plan struct {
	Shares      []Share         `json:"shares"`
	Unallocated decimal.Decimal `json:"unallocated"`
}

func (p Plan) Allocated() decimal.Decimal {
	total := decimal.Zero
	for _, s := range p.Shares {
		total = total.Add(s.Amount)
	}
	return total
}

// PlanAllocation splits amount across a doctor's case balances.
//
// Selected cases share the payment in proportion to their remaining balance,
// each capped at that balance. Whatever exceeds the selected balances is
// spread evenly over the unselected cases that still owe money; amounts a
// capped case cannot absorb are spread again over the cases with capacity
// left. What no case can absorb is returned as Unallocated.
//
// With nothing selected the whole amount is unallocated. Work happens in
// whole cents: proportional shares are floored and the residue cents go to
// the largest fractional remainders, even splits hand their extra cents to
// the earliest cases.
func PlanAllocation(amount decimal.Decimal, balances []CaseBalance, selected []snowflake.ID) Plan {
	total := money.ToCents(amount)
	if total <= 0 || len(selected) == 0 {
		return Plan{Shares: []Share{}, Unallocated: money.FromCents(max(total, 0))}
	}

	isSelected := make(map[snowflake.ID]bool, len(selected))
	for _, id := range selected {
		isSelected[id] = true
	}

	remaining := make([]int64, len(balances))
	for i, b := range balances {
		remaining[i] = money.ToCents(b.Remaining())
	}

	shares := make([]int64, len(balances))

	var chosen []int
	var selectedTotal int64
	for i, b := range balances {
		if isSelected[b.CaseID] && remaining[i] > 0 {
			chosen = append(chosen, i)
			selectedTotal += remaining[i]
		}
	}

	if selectedTotal > 0 {
		if total >= selectedTotal {
			for _, i := range chosen {
				shares[i] = remaining[i]
			}
		} else {
			splitProportional(total, selectedTotal, chosen, remaining, shares)
		}
	}

	leftover := total - selectedTotal
	if leftover < 0 {
		leftover = 0
	}

	var open []int
	for i, b := range balances {
		if !isSelected[b.CaseID] && remaining[i] > 0 {
			open = append(open, i)
		}
	}
	leftover = splitEven(leftover, open, remaining, shares)

	out := Plan{Shares: []Share{}, Unallocated: money.FromCents(leftover)}
	for i, b := range balances {
		if shares[i] > 0 {
			out.Shares = append(out.Shares, Share{CaseID: b.CaseID, Amount: money.FromCents(shares[i])})
		}
	}
	return out
}

// splitProportional assigns total * remaining[i] / selectedTotal to every
// chosen case. Requires total < selectedTotal, so no share reaches its cap
// before the residue cents are handed out.
func splitProportional(total, selectedTotal int64, chosen []int, remaining, shares []int64) {
	type frac struct {
		index int
		rem   decimal.Decimal
	}

	den := decimal.NewFromInt(selectedTotal)
	fracs := make([]frac, 0, len(chosen))
	var assigned int64
	for _, i := range chosen {
		num := decimal.NewFromInt(total).Mul(decimal.NewFromInt(remaining[i]))
		q, r := num.QuoRem(den, 0)
		shares[i] = q.IntPart()
		assigned += shares[i]
		fracs = append(fracs, frac{index: i, rem: r})
	}

	sort.SliceStable(fracs, func(a, b int) bool {
		return fracs[a].rem.GreaterThan(fracs[b].rem)
	})

	residue := total - assigned
	for _, f := range fracs {
		if residue == 0 {
			break
		}
		if shares[f.index] < remaining[f.index] {
			shares[f.index]++
			residue--
		}
	}
}

// splitEven water-fills pool over open cases and returns what is left.
func splitEven(pool int64, open []int, remaining, shares []int64) int64 {
	for pool > 0 && len(open) > 0 {
		n := int64(len(open))
		per, extra := pool/n, pool%n

		next := open[:0]
		var given int64
		for k, i := range open {
			give := per
			if int64(k) < extra {
				give++
			}
			capacity := remaining[i] - shares[i]
			if give > capacity {
				give = capacity
			}
			shares[i] += give
			given += give
			if shares[i] < remaining[i] {
				next = append(next, i)
			}
		}
		pool -= given
		open = next
	}
	return pool
}

// Check verifies a plan before it is written: every share positive and
// within its case's remaining balance, each case at most once, and shares
// plus unallocated equal to the payment amount.
func (p Plan) Check(amount decimal.Decimal, balances []CaseBalance) error {
	remaining := make(map[snowflake.ID]decimal.Decimal, len(balances))
	for _, b := range balances {
		remaining[b.CaseID] = b.Remaining()
	}

	seen := make(map[snowflake.ID]bool, len(p.Shares))
	for _, s := range p.Shares {
		if !s.Amount.IsPositive() {
			return fmt.Errorf("%w: non-positive share for case %s", ErrAllocationInvariant, s.CaseID)
		}
		limit, ok := remaining[s.CaseID]
		if !ok {
			return fmt.Errorf("%w: unknown case %s", ErrAllocationInvariant, s.CaseID)
		}
		if s.Amount.GreaterThan(limit) {
			return fmt.Errorf("%w: case %s share %s exceeds remaining %s", ErrAllocationInvariant, s.CaseID, s.Amount, limit)
		}
		if seen[s.CaseID] {
			return fmt.Errorf("%w: case %s allocated twice", ErrAllocationInvariant, s.CaseID)
		}
		seen[s.CaseID] = true
	}

	allocated := p.Allocated()
	if allocated.GreaterThan(amount) {
		return fmt.Errorf("%w: allocated %s exceeds amount %s", ErrAllocationInvariant, allocated, amount)
	}
	if p.Unallocated.IsNegative() || !allocated.Add(p.Unallocated).Equal(amount) {
		return fmt.Errorf("%w: allocated %s plus unallocated %s does not equal amount %s", ErrAllocationInvariant, allocated, p.Unallocated, amount)
	}
	return nil
}
