package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/railzwaylabs/aligntrack/internal/actorcontext"
	"github.com/railzwaylabs/aligntrack/internal/casework/domain"
	catalogdomain "github.com/railzwaylabs/aligntrack/internal/catalog/domain"
	"github.com/railzwaylabs/aligntrack/internal/clock"
	"github.com/railzwaylabs/aligntrack/internal/money"
	"github.com/railzwaylabs/aligntrack/internal/observability"
	"github.com/shopspring/decimal"
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
	Catalog catalogdomain.Service
	Events  domain.EventPublisher
	Metrics *observability.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	catalog catalogdomain.Service
	events  domain.EventPublisher
	metrics *observability.Metrics
}

func New(p Params) domain.Service {
	events := p.Events
	if events == nil {
		events = nopPublisher{}
	}
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("casework.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		catalog: p.Catalog,
		events:  events,
		metrics: p.Metrics,
	}
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, *gorm.DB, domain.Event) error { return nil }

func (s *Service) GetCase(ctx context.Context, id string) (*domain.Case, error) {
	return s.loadCase(ctx, id)
}

func (s *Service) ListCasesByDoctor(ctx context.Context, doctorID string) ([]domain.Case, error) {
	id, err := parseID(doctorID)
	if err != nil {
		return nil, err
	}
	if actor, ok := actorcontext.FromContext(ctx); ok && !actor.Role.IsStaff() && actor.ID != id {
		return nil, domain.ErrForbidden
	}

	items, err := s.repo.ListByDoctor(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Case{}
	}
	return items, nil
}

// loadCase reads the case and hides other doctors' cases from a doctor.
func (s *Service) loadCase(ctx context.Context, id string) (*domain.Case, error) {
	caseID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	c, err := s.repo.FindByID(ctx, s.db, caseID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	if err := authorizeOwner(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func authorizeOwner(ctx context.Context, c *domain.Case) error {
	actor, ok := actorcontext.FromContext(ctx)
	if !ok || actor.Role.IsStaff() {
		return nil
	}
	if actor.ID != c.DoctorID {
		return domain.ErrForbidden
	}
	return nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

// transition describes one guarded write: the row moves from -> to only while
// it still has status from. When from == to the fields change in place.
// repriced marks writes that may lower total_cost.
type transition struct {
	op       string
	from     domain.Status
	to       domain.Status
	fields   map[string]any
	event    *domain.Event
	repriced bool
}

func (s *Service) apply(ctx context.Context, c *domain.Case, t transition) (*domain.Case, error) {
	if c.Status != t.from {
		return nil, s.reject(t.op, c, domain.ErrInvalidStateTransition)
	}
	if t.from != t.to && !domain.CanTransition(t.from, t.to) {
		return nil, s.reject(t.op, c, domain.ErrInvalidStateTransition)
	}

	fields := t.fields
	if fields == nil {
		fields = map[string]any{}
	}
	fields["status"] = t.to
	fields["updated_at"] = s.clock.Now(ctx)

	var updated *domain.Case
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		affected, err := s.repo.UpdateIfStatus(ctx, tx, c.ID, t.from, fields)
		if err != nil {
			return err
		}
		if affected == 0 {
			return domain.ErrStaleState
		}

		updated, err = s.repo.FindByID(ctx, tx, c.ID)
		if err != nil {
			return err
		}
		if updated == nil {
			return domain.ErrNotFound
		}

		released := decimal.Zero
		if t.repriced {
			released, err = s.releaseExcess(ctx, tx, updated)
			if err != nil {
				return err
			}
		}

		if t.event != nil {
			event := *t.event
			event.CaseID = c.ID
			event.ActorID = actorcontext.ActorIDPtr(ctx)
			from := t.from
			event.FromStatus = &from
			event.ToStatus = t.to
			if released.IsPositive() {
				event.Payload = withReleased(event.Payload, released)
			}
			if err := s.events.Publish(ctx, tx, event); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrStaleState) {
			return nil, s.reject(t.op, c, err)
		}
		return nil, err
	}

	if t.from != t.to {
		s.metrics.CaseTransition(string(t.from), string(t.to))
		s.log.Info("case transitioned",
			zap.String("operation", t.op),
			zap.String("case_id", c.ID.String()),
			zap.String("from", string(t.from)),
			zap.String("to", string(t.to)),
		)
	}
	return updated, nil
}

// releaseExcess keeps a case's allocations within its total_cost. When a
// price change drops the total below what has been paid, the newest
// allocations shrink first and the difference goes back to their payments as
// unallocated credit.
func (s *Service) releaseExcess(ctx context.Context, tx *gorm.DB, c *domain.Case) (decimal.Decimal, error) {
	shares, err := s.repo.LockAllocations(ctx, tx, c.ID)
	if err != nil {
		return decimal.Zero, err
	}
	allocated := decimal.Zero
	for _, share := range shares {
		allocated = allocated.Add(share.Amount)
	}
	excess := allocated.Sub(valueOrZero(c.TotalCost))
	if !excess.IsPositive() {
		return decimal.Zero, nil
	}

	released := excess
	for _, share := range shares {
		if !excess.IsPositive() {
			break
		}
		take := money.Min(excess, share.Amount)
		if err := s.repo.ShrinkAllocation(ctx, tx, share.ID, share.Amount.Sub(take)); err != nil {
			return decimal.Zero, err
		}
		if err := s.repo.CreditPayment(ctx, tx, share.PaymentID, take); err != nil {
			return decimal.Zero, err
		}
		excess = excess.Sub(take)
	}

	s.log.Info("case allocations released to credit",
		zap.String("case_id", c.ID.String()),
		zap.String("released", released.StringFixed(2)),
	)
	return released, nil
}

func withReleased(payload map[string]any, released decimal.Decimal) map[string]any {
	out := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		out[k] = v
	}
	out["released_credit"] = released.StringFixed(2)
	return out
}

func (s *Service) reject(op string, c *domain.Case, err error) error {
	reason := "invalid_state"
	if errors.Is(err, domain.ErrStaleState) {
		reason = "stale_state"
	}
	s.metrics.TransitionRejected(op, reason)
	s.log.Debug("case operation rejected",
		zap.String("operation", op),
		zap.String("case_id", c.ID.String()),
		zap.String("status", string(c.Status)),
		zap.Error(err),
	)
	return err
}

func toDoctor(c *domain.Case, eventType domain.EventType, payload map[string]any) *domain.Event {
	recipient := c.DoctorID
	return &domain.Event{Type: eventType, RecipientID: &recipient, Payload: payload}
}

func toAdmins(eventType domain.EventType, payload map[string]any) *domain.Event {
	return &domain.Event{Type: eventType, Payload: payload}
}
