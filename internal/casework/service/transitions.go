package service

import (
	"context"
	"errors"

	"github.com/railzwaylabs/aligntrack/internal/actorcontext"
	"github.com/railzwaylabs/aligntrack/internal/casework/domain"
	catalogdomain "github.com/railzwaylabs/aligntrack/internal/catalog/domain"
	"github.com/railzwaylabs/aligntrack/pkg/validation"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	minRating = 1
	maxRating = 5
)

// AcceptCase captures the case study fee. A nil fee uses the catalog's
// active acceptance fee.
func (s *Service) AcceptCase(ctx context.Context, id string, fee *decimal.Decimal) (*domain.Case, error) {
	c, err := s.loadCase(ctx, id)
	if err != nil {
		return nil, err
	}

	var amount decimal.Decimal
	if fee != nil {
		amount, err = normalizeAmount("fee", *fee)
		if err != nil {
			return nil, err
		}
	} else {
		amount, err = s.catalog.AcceptanceFee(ctx)
		if err != nil {
			if errors.Is(err, catalogdomain.ErrNotFound) {
				return nil, validation.New("fee", "required")
			}
			return nil, err
		}
	}

	return s.apply(ctx, c, transition{
		op:   "accept_case",
		from: domain.StatusSubmitted,
		to:   domain.StatusAccepted,
		fields: map[string]any{
			"case_study_fee": amount,
		},
		event: toDoctor(c, domain.EventTransition, map[string]any{"case_study_fee": amount.StringFixed(2)}),
	})
}

func (s *Service) DeclineCase(ctx context.Context, id string, reason string) (*domain.Case, error) {
	text, err := requireText("reason", reason)
	if err != nil {
		return nil, err
	}
	c, err := s.loadCase(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.apply(ctx, c, transition{
		op:   "decline_case",
		from: domain.StatusSubmitted,
		to:   domain.StatusRejected,
		fields: map[string]any{
			"decline_reason": text,
			"declined_at":    s.clock.Now(ctx),
			"declined_by":    actorcontext.ActorIDPtr(ctx),
		},
		event: toDoctor(c, domain.EventDecline, map[string]any{"reason": text}),
	})
}

func (s *Service) UndoDecline(ctx context.Context, id string) (*domain.Case, error) {
	c, err := s.loadCase(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.apply(ctx, c, transition{
		op:   "undo_decline",
		from: domain.StatusRejected,
		to:   domain.StatusSubmitted,
		fields: map[string]any{
			"decline_reason": nil,
			"declined_at":    nil,
			"declined_by":    nil,
		},
		event: toDoctor(c, domain.EventTransition, nil),
	})
}

func (s *Service) SendForApproval(ctx context.Context, id string, req domain.SendForApprovalRequest) (*domain.Case, error) {
	if err := requirePositive("upper_aligners_count", req.UpperAlignersCount); err != nil {
		return nil, err
	}
	if err := requirePositive("lower_aligners_count", req.LowerAlignersCount); err != nil {
		return nil, err
	}
	if err := requirePositive("estimated_duration_months", req.EstimatedDurationMonths); err != nil {
		return nil, err
	}
	delivery, err := normalizeAmount("delivery_charges", req.DeliveryCharges)
	if err != nil {
		return nil, err
	}

	c, err := s.loadCase(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status != domain.StatusAccepted {
		return nil, s.reject("send_for_approval", c, domain.ErrInvalidStateTransition)
	}

	fee, err := s.resolveFee(ctx, c, req.Fee)
	if err != nil {
		return nil, err
	}
	material, err := s.resolveMaterialPrice(ctx, c, req.MaterialPrice)
	if err != nil {
		return nil, err
	}
	total, err := quotedTotal(fee, material, delivery)
	if err != nil {
		return nil, err
	}

	return s.apply(ctx, c, transition{
		op:   "send_for_approval",
		from: domain.StatusAccepted,
		to:   domain.StatusAwaitingUserApproval,
		fields: map[string]any{
			"upper_aligners_count":      req.UpperAlignersCount,
			"lower_aligners_count":      req.LowerAlignersCount,
			"estimated_duration_months": req.EstimatedDurationMonths,
			"case_study_fee":            fee,
			"aligners_price":            material,
			"delivery_charges":          delivery,
			"total_cost":                total,
			"edit_request_note":         nil,
		},
		event: toDoctor(c, domain.EventTransition, map[string]any{"total_cost": total.StringFixed(2)}),
	})
}

func (s *Service) resolveFee(ctx context.Context, c *domain.Case, fee *decimal.Decimal) (decimal.Decimal, error) {
	if fee != nil {
		return normalizeAmount("fee", *fee)
	}
	if c.CaseStudyFee != nil {
		return *c.CaseStudyFee, nil
	}
	amount, err := s.catalog.AcceptanceFee(ctx)
	if errors.Is(err, catalogdomain.ErrNotFound) {
		return decimal.Zero, validation.New("fee", "required")
	}
	return amount, err
}

func (s *Service) resolveMaterialPrice(ctx context.Context, c *domain.Case, price *decimal.Decimal) (decimal.Decimal, error) {
	if price != nil {
		return normalizeAmount("material_price", *price)
	}
	if c.AlignerMaterial == nil {
		return decimal.Zero, validation.New("material_price", "required")
	}
	amount, err := s.catalog.MaterialPrice(ctx, *c.AlignerMaterial)
	if errors.Is(err, catalogdomain.ErrNotFound) {
		return decimal.Zero, validation.New("material_price", "required")
	}
	return amount, err
}

// UpdatePlan edits plan counts and prices in place while the plan is not yet
// locked. approved_total_cost is never touched.
func (s *Service) UpdatePlan(ctx context.Context, id string, req domain.UpdatePlanRequest) (*domain.Case, error) {
	c, err := s.loadCase(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.PlanEditAllowed() {
		return nil, s.reject("update_plan", c, domain.ErrInvalidStateTransition)
	}

	fields := map[string]any{}
	counts := []struct {
		field string
		value *int
	}{
		{"upper_aligners_count", req.UpperAlignersCount},
		{"lower_aligners_count", req.LowerAlignersCount},
		{"estimated_duration_months", req.EstimatedDurationMonths},
	}
	for _, count := range counts {
		if count.value == nil {
			continue
		}
		if err := requirePositive(count.field, *count.value); err != nil {
			return nil, err
		}
		fields[count.field] = *count.value
	}

	fee := valueOrZero(c.CaseStudyFee)
	material := valueOrZero(c.AlignersPrice)
	delivery := valueOrZero(c.DeliveryCharges)
	priced := false
	prices := []struct {
		field  string
		value  *decimal.Decimal
		target *decimal.Decimal
	}{
		{"case_study_fee", req.Fee, &fee},
		{"aligners_price", req.MaterialPrice, &material},
		{"delivery_charges", req.DeliveryCharges, &delivery},
	}
	for _, price := range prices {
		if price.value == nil {
			continue
		}
		amount, err := normalizeAmount(price.field, *price.value)
		if err != nil {
			return nil, err
		}
		*price.target = amount
		fields[price.field] = amount
		priced = true
	}
	if priced {
		total, err := quotedTotal(fee, material, delivery)
		if err != nil {
			return nil, err
		}
		fields["total_cost"] = total
	}
	if len(fields) == 0 {
		return c, nil
	}

	return s.apply(ctx, c, transition{
		op:       "update_plan",
		from:     c.Status,
		to:       c.Status,
		fields:   fields,
		repriced: priced,
	})
}

func valueOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

// DoctorApprove freezes the quoted total. The copy happens in SQL so a
// concurrent plan edit cannot slip between read and write.
func (s *Service) DoctorApprove(ctx context.Context, id string) (*domain.Case, error) {
	c, err := s.loadCase(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.apply(ctx, c, transition{
		op:   "doctor_approve",
		from: domain.StatusAwaitingUserApproval,
		to:   domain.StatusApproved,
		fields: map[string]any{
			"approved_total_cost": gorm.Expr("total_cost"),
			"approved_at":         s.clock.Now(ctx),
		},
		event: toAdmins(domain.EventTransition, nil),
	})
}

// DoctorDecline keeps only the non-refundable case study fee on the bill.
// Anything already paid above the fee becomes credit on the paying payments.
func (s *Service) DoctorDecline(ctx context.Context, id string, reason string) (*domain.Case, error) {
	text, err := requireText("reason", reason)
	if err != nil {
		return nil, err
	}
	c, err := s.loadCase(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.apply(ctx, c, transition{
		op:   "doctor_decline",
		from: domain.StatusAwaitingUserApproval,
		to:   domain.StatusUserRejected,
		fields: map[string]any{
			"total_cost":     gorm.Expr("case_study_fee"),
			"decline_reason": text,
			"declined_at":    s.clock.Now(ctx),
			"declined_by":    actorcontext.ActorIDPtr(ctx),
		},
		event:    toAdmins(domain.EventDecline, map[string]any{"reason": text}),
		repriced: true,
	})
}

// DoctorRequestEdit sends the case back for re-pricing when the material
// changes. Otherwise only the note is attached and the status stays put.
func (s *Service) DoctorRequestEdit(ctx context.Context, id string, req domain.EditRequest) (*domain.Case, error) {
	note := optionalText(req.Note)

	if req.MaterialChanged {
		material := optionalText(req.NewMaterial)
		if material == nil {
			return nil, validation.New("new_material", "required")
		}
		c, err := s.loadCase(ctx, id)
		if err != nil {
			return nil, err
		}
		return s.apply(ctx, c, transition{
			op:   "doctor_request_edit",
			from: domain.StatusAwaitingUserApproval,
			to:   domain.StatusAccepted,
			fields: map[string]any{
				"aligner_material":  *material,
				"edit_request_note": note,
			},
			event: toAdmins(domain.EventTransition, map[string]any{"new_material": *material}),
		})
	}

	c, err := s.loadCase(ctx, id)
	if err != nil {
		return nil, err
	}
	// A blank note keeps any earlier note and only records the request.
	fields := map[string]any{}
	var payload map[string]any
	if note != nil {
		fields["edit_request_note"] = *note
		payload = map[string]any{"note": *note}
	}
	return s.apply(ctx, c, transition{
		op:     "doctor_request_edit",
		from:   domain.StatusAwaitingUserApproval,
		to:     domain.StatusAwaitingUserApproval,
		fields: fields,
		event:  toAdmins(domain.EventTransition, payload),
	})
}

// AdvanceManufacturing moves one step along approved -> in_production ->
// ready_for_delivery -> delivered.
func (s *Service) AdvanceManufacturing(ctx context.Context, id string, expectedCurrent, next domain.Status) (*domain.Case, error) {
	c, err := s.loadCase(ctx, id)
	if err != nil {
		return nil, err
	}

	successor, ok := domain.NextManufacturingStatus(expectedCurrent)
	if !ok || successor != next {
		return nil, s.reject("advance_manufacturing", c, domain.ErrInvalidStateTransition)
	}

	return s.apply(ctx, c, transition{
		op:    "advance_manufacturing",
		from:  expectedCurrent,
		to:    next,
		event: toDoctor(c, domain.EventTransition, nil),
	})
}

func (s *Service) CompleteCase(ctx context.Context, id string, rating int, message string) (*domain.Case, error) {
	if rating < minRating || rating > maxRating {
		return nil, validation.New("satisfaction_rating", "out_of_range")
	}
	c, err := s.loadCase(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.apply(ctx, c, transition{
		op:   "complete_case",
		from: domain.StatusDelivered,
		to:   domain.StatusCompleted,
		fields: map[string]any{
			"satisfaction_rating": rating,
			"completion_message":  optionalText(&message),
			"completed_at":        s.clock.Now(ctx),
		},
		event: toAdmins(domain.EventTransition, map[string]any{"satisfaction_rating": rating}),
	})
}
