package service

import (
	"context"
	"database/sql"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/railzwaylabs/aligntrack/internal/actorcontext"
	allocationdomain "github.com/railzwaylabs/aligntrack/internal/allocation/domain"
	"github.com/railzwaylabs/aligntrack/internal/billing/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo allocationdomain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo allocationdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("billing.service"),
		repo: p.Repo,
	}
}

func (s *Service) Totals(ctx context.Context) (domain.Totals, error) {
	actor, ok := actorcontext.FromContext(ctx)
	if ok && !actor.Role.IsStaff() {
		return domain.Totals{}, domain.ErrForbidden
	}

	var payments []allocationdomain.Payment
	err := s.snapshot(ctx, func(tx *gorm.DB) error {
		var err error
		payments, err = s.repo.ListPayments(ctx, tx)
		return err
	})
	if err != nil {
		return domain.Totals{}, err
	}
	return domain.SummarizeTotals(payments), nil
}

func (s *Service) DoctorSummary(ctx context.Context, doctorID string) (*domain.DoctorSummary, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(doctorID))
	if err != nil || id <= 0 {
		return nil, domain.ErrInvalidID
	}
	if actor, ok := actorcontext.FromContext(ctx); ok && !actor.Role.IsStaff() && actor.ID != id {
		return nil, domain.ErrForbidden
	}

	var (
		costs       []allocationdomain.CaseCost
		payments    []allocationdomain.Payment
		allocations []allocationdomain.Allocation
	)
	err = s.snapshot(ctx, func(tx *gorm.DB) error {
		var err error
		if costs, err = s.repo.ListCaseCosts(ctx, tx, id); err != nil {
			return err
		}
		if payments, err = s.repo.ListPaymentsByDoctor(ctx, tx, id); err != nil {
			return err
		}
		ids := make([]snowflake.ID, 0, len(costs))
		for _, c := range costs {
			ids = append(ids, c.ID)
		}
		allocations, err = s.repo.ListAllocationsByCaseIDs(ctx, tx, ids)
		return err
	})
	if err != nil {
		return nil, err
	}

	summary := domain.SummarizeDoctor(id, costs, payments, allocations)
	return &summary, nil
}

// snapshot runs fn in one read-only repeatable-read transaction on postgres
// so every aggregate sees the same commit. Other drivers use a plain
// transaction.
func (s *Service) snapshot(ctx context.Context, fn func(tx *gorm.DB) error) error {
	var opts []*sql.TxOptions
	if s.db.Dialector.Name() == "postgres" {
		opts = append(opts, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	}
	return s.db.WithContext(ctx).Transaction(fn, opts...)
}
