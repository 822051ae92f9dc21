package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/railzwaylabs/aligntrack/internal/actorcontext"
	"github.com/railzwaylabs/aligntrack/internal/allocation/domain"
	"github.com/railzwaylabs/aligntrack/internal/clock"
	"github.com/railzwaylabs/aligntrack/internal/money"
	"github.com/railzwaylabs/aligntrack/internal/observability"
	"github.com/railzwaylabs/aligntrack/pkg/db"
	"github.com/railzwaylabs/aligntrack/pkg/validation"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    domain.Repository
	Guard   domain.RequestGuard    `optional:"true"`
	Metrics *observability.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	guard   domain.RequestGuard
	metrics *observability.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("allocation.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		guard:   p.Guard,
		metrics: p.Metrics,
	}
}

// RecordPayment writes the payment, its allocations and its unallocated
// remainder in one transaction. The doctor's case rows stay locked from the
// balance read until commit, so concurrent payments see each other's
// allocations.
func (s *Service) RecordPayment(ctx context.Context, req domain.RecordPaymentRequest) (*domain.PaymentResponse, error) {
	actor, ok := actorcontext.FromContext(ctx)
	if !ok || !actor.Role.IsStaff() {
		return nil, domain.ErrForbidden
	}

	amount, err := money.Normalize(req.Amount)
	if errors.Is(err, money.ErrTooLarge) {
		return nil, validation.New("amount", "too_large")
	}
	if err != nil || !amount.IsPositive() {
		return nil, validation.New("amount", "must_be_positive")
	}
	paymentType, err := domain.ParsePaymentType(strings.TrimSpace(req.Type))
	if err != nil {
		return nil, validation.New("type", "invalid")
	}

	var doctorID *snowflake.ID
	if value := strings.TrimSpace(req.DoctorID); value != "" {
		id, err := parseID(value)
		if err != nil {
			return nil, validation.New("doctor_id", "invalid")
		}
		doctorID = &id
	}

	selected, err := parseIDs(req.SelectedCaseIDs)
	if err != nil {
		return nil, validation.New("selected_case_ids", "invalid")
	}
	if len(selected) > 0 && (doctorID == nil || paymentType != domain.PaymentTypePayment) {
		return nil, validation.New("selected_case_ids", "requires_doctor_payment")
	}

	key := strings.TrimSpace(req.IdempotencyKey)
	if key != "" {
		if replay, err := s.replay(ctx, key); replay != nil || err != nil {
			return replay, err
		}
		release, err := s.acquire(ctx, key)
		if err != nil {
			return nil, err
		}
		defer release()
		// The first request may have committed between the lookup and
		// the acquire.
		if replay, err := s.replay(ctx, key); replay != nil || err != nil {
			return replay, err
		}
	}

	now := s.clock.Now(ctx)
	payment := domain.Payment{
		ID:        s.genID.Generate(),
		DoctorID:  doctorID,
		Amount:    amount,
		Type:      paymentType,
		AdminID:   actor.ID,
		Notes:     optionalText(req.Notes),
		CreatedAt: now,
	}
	if key != "" {
		payment.IdempotencyKey = &key
	}

	var allocations []domain.Allocation
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var balances []domain.CaseBalance
		if doctorID != nil && paymentType == domain.PaymentTypePayment {
			costs, err := s.repo.LockCaseCosts(ctx, tx, *doctorID)
			if err != nil {
				return err
			}
			if err := requireOwned(selected, costs); err != nil {
				return err
			}
			prior, err := s.repo.ListAllocationsByCaseIDs(ctx, tx, caseIDs(costs))
			if err != nil {
				return err
			}
			balances = domain.Balances(costs, prior)
		}

		plan := domain.PlanAllocation(amount, balances, selected)
		if err := plan.Check(amount, balances); err != nil {
			s.log.Error("allocation plan rejected",
				zap.String("payment_id", payment.ID.String()),
				zap.String("amount", amount.String()),
				zap.Error(err),
			)
			return err
		}

		payment.UnallocatedAmount = plan.Unallocated
		if err := s.repo.InsertPayment(ctx, tx, &payment); err != nil {
			if db.IsUniqueViolation(err) {
				return domain.ErrDuplicateRequest
			}
			return err
		}

		allocations = make([]domain.Allocation, 0, len(plan.Shares))
		for _, share := range plan.Shares {
			allocations = append(allocations, domain.Allocation{
				ID:              s.genID.Generate(),
				PaymentID:       payment.ID,
				CaseID:          share.CaseID,
				AllocatedAmount: share.Amount,
				CreatedAt:       now,
			})
		}
		return s.repo.InsertAllocations(ctx, tx, allocations)
	})
	if errors.Is(err, domain.ErrDuplicateRequest) && key != "" {
		if replay, lookupErr := s.replay(ctx, key); replay != nil || lookupErr != nil {
			return replay, lookupErr
		}
	}
	if err != nil {
		return nil, err
	}

	allocated := amount.Sub(payment.UnallocatedAmount)
	s.metrics.PaymentRecorded(string(paymentType), len(allocations), allocated.InexactFloat64(), payment.UnallocatedAmount.InexactFloat64())
	s.log.Info("payment recorded",
		zap.String("payment_id", payment.ID.String()),
		zap.String("type", string(paymentType)),
		zap.String("amount", amount.StringFixed(2)),
		zap.String("unallocated", payment.UnallocatedAmount.StringFixed(2)),
		zap.Int("allocations", len(allocations)),
	)

	return &domain.PaymentResponse{Payment: payment, Allocations: allocations}, nil
}

// replay returns the stored response for a key that already produced a
// payment, or nil when the key is unused.
func (s *Service) replay(ctx context.Context, key string) (*domain.PaymentResponse, error) {
	existing, err := s.repo.FindPaymentByIdempotencyKey(ctx, s.db, key)
	if err != nil || existing == nil {
		return nil, err
	}
	return s.withAllocations(ctx, existing)
}

func (s *Service) acquire(ctx context.Context, key string) (func(), error) {
	if s.guard == nil {
		return func() {}, nil
	}
	ok, err := s.guard.Acquire(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("acquire idempotency key: %w", err)
	}
	if !ok {
		return nil, domain.ErrDuplicateRequest
	}
	return func() {
		if err := s.guard.Release(context.Background(), key); err != nil {
			s.log.Warn("failed to release idempotency key", zap.String("key", key), zap.Error(err))
		}
	}, nil
}

func (s *Service) GetPayment(ctx context.Context, id string) (*domain.PaymentResponse, error) {
	paymentID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	payment, err := s.repo.FindPaymentByID(ctx, s.db, paymentID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, domain.ErrNotFound
	}
	if err := authorizeDoctor(ctx, payment.DoctorID); err != nil {
		return nil, err
	}
	return s.withAllocations(ctx, payment)
}

func (s *Service) withAllocations(ctx context.Context, payment *domain.Payment) (*domain.PaymentResponse, error) {
	allocations, err := s.repo.ListAllocationsByPaymentIDs(ctx, s.db, []snowflake.ID{payment.ID})
	if err != nil {
		return nil, err
	}
	return &domain.PaymentResponse{Payment: *payment, Allocations: allocations}, nil
}

// DeletePayment removes a payment and its allocations atomically. Only a
// super admin may do this.
func (s *Service) DeletePayment(ctx context.Context, id string) error {
	actor, ok := actorcontext.FromContext(ctx)
	if !ok || actor.Role != actorcontext.RoleSuperAdmin {
		return domain.ErrForbidden
	}
	paymentID, err := parseID(id)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payment, err := s.repo.FindPaymentByID(ctx, tx, paymentID)
		if err != nil {
			return err
		}
		if payment == nil {
			return domain.ErrNotFound
		}
		affected, err := s.repo.DeletePayment(ctx, tx, paymentID)
		if err != nil {
			return err
		}
		if affected == 0 {
			return domain.ErrNotFound
		}
		s.log.Info("payment deleted",
			zap.String("payment_id", paymentID.String()),
			zap.String("amount", payment.Amount.StringFixed(2)),
			zap.String("actor_id", actor.ID.String()),
		)
		return nil
	})
}

func (s *Service) ListPaymentsByDoctor(ctx context.Context, doctorID string) ([]domain.Payment, error) {
	id, err := parseID(doctorID)
	if err != nil {
		return nil, err
	}
	if err := authorizeDoctor(ctx, &id); err != nil {
		return nil, err
	}
	items, err := s.repo.ListPaymentsByDoctor(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Payment{}
	}
	return items, nil
}

func (s *Service) ListAllocationsByCaseIDs(ctx context.Context, ids []string) ([]domain.Allocation, error) {
	caseIDs, err := parseIDs(ids)
	if err != nil {
		return nil, err
	}
	return s.repo.ListAllocationsByCaseIDs(ctx, s.db, caseIDs)
}

// authorizeDoctor keeps a doctor to their own ledger.
func authorizeDoctor(ctx context.Context, doctorID *snowflake.ID) error {
	actor, ok := actorcontext.FromContext(ctx)
	if !ok || actor.Role.IsStaff() {
		return nil
	}
	if doctorID == nil || *doctorID != actor.ID {
		return domain.ErrForbidden
	}
	return nil
}

func requireOwned(selected []snowflake.ID, costs []domain.CaseCost) error {
	owned := make(map[snowflake.ID]bool, len(costs))
	for _, c := range costs {
		owned[c.ID] = true
	}
	for _, id := range selected {
		if !owned[id] {
			return validation.New("selected_case_ids", "unknown_case")
		}
	}
	return nil
}

func caseIDs(costs []domain.CaseCost) []snowflake.ID {
	ids := make([]snowflake.ID, 0, len(costs))
	for _, c := range costs {
		ids = append(ids, c.ID)
	}
	return ids
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

// parseIDs parses and de-duplicates ids, keeping first-seen order.
func parseIDs(values []string) ([]snowflake.ID, error) {
	seen := make(map[snowflake.ID]bool, len(values))
	out := make([]snowflake.ID, 0, len(values))
	for _, value := range values {
		id, err := parseID(value)
		if err != nil {
			return nil, err
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out, nil
}

func optionalText(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
