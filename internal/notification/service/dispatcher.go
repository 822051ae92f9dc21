package service

import (
	"context"
	"encoding/json"

	"github.com/bwmarrin/snowflake"
	"github.com/railzwaylabs/aligntrack/internal/clock"
	"github.com/railzwaylabs/aligntrack/internal/config"
	"github.com/railzwaylabs/aligntrack/internal/notification/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	DispatcherConsumerID = "notification_dispatcher"
	defaultBatchSize     = 50
)

type DispatcherParams struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Cfg       config.Config
	Repo      domain.Repository
	Providers []domain.NotificationProvider `group:"notification_providers"`
}

// Dispatcher drains case events past its stored offset. Doctor-addressed
// events land in the inbox; every event is forwarded to the providers.
// Delivery to providers is best effort and is not retried once the offset
// has moved past the event.
type Dispatcher struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	repo      domain.Repository
	batchSize int
	providers []domain.NotificationProvider
}

func NewDispatcher(p DispatcherParams) *Dispatcher {
	batch := p.Cfg.Notification.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	return &Dispatcher{
		db:        p.DB,
		log:       p.Log.Named("notification.dispatcher"),
		genID:     p.GenID,
		clock:     p.Clock,
		repo:      p.Repo,
		batchSize: batch,
		providers: p.Providers,
	}
}

// ProcessEvents handles one batch and returns how many events it consumed.
func (d *Dispatcher) ProcessEvents(ctx context.Context) (int, error) {
	lastID, err := d.repo.GetOffset(ctx, d.db, DispatcherConsumerID)
	if err != nil {
		return 0, err
	}

	events, err := d.repo.ListEventsAfter(ctx, d.db, lastID, d.batchSize)
	if err != nil {
		return 0, err
	}

	for i := range events {
		event := events[i]
		if err := d.deliverInbox(ctx, event); err != nil {
			// The offset stays put so the event is picked up again.
			return i, err
		}
		d.forward(ctx, event)

		if err := d.repo.SaveOffset(ctx, d.db, DispatcherConsumerID, event.ID, d.clock.Now(ctx)); err != nil {
			return i, err
		}
	}

	return len(events), nil
}

// Drain runs batches until the outbox is exhausted.
func (d *Dispatcher) Drain(ctx context.Context) (int, error) {
	total := 0
	for {
		n, err := d.ProcessEvents(ctx)
		total += n
		if err != nil {
			return total, err
		}
		if n < d.batchSize {
			return total, nil
		}
		if err := ctx.Err(); err != nil {
			return total, err
		}
	}
}

func (d *Dispatcher) deliverInbox(ctx context.Context, event domain.CaseEvent) error {
	if event.RecipientID == nil {
		return nil
	}
	return d.repo.InsertNotification(ctx, d.db, &domain.Notification{
		ID:          d.genID.Generate(),
		RecipientID: *event.RecipientID,
		EventID:     event.ID,
		CaseID:      event.CaseID,
		Type:        event.Type,
		ToStatus:    event.ToStatus,
		CreatedAt:   d.clock.Now(ctx),
	})
}

func (d *Dispatcher) forward(ctx context.Context, event domain.CaseEvent) {
	if len(d.providers) == 0 {
		return
	}

	data := map[string]any{}
	if len(event.Payload) > 0 {
		if err := json.Unmarshal(event.Payload, &data); err != nil {
			d.log.Warn("invalid case event payload", zap.Error(err), zap.String("event_id", event.ID.String()))
			data = map[string]any{}
		}
	}
	data["case_id"] = event.CaseID.String()
	data["to_status"] = event.ToStatus
	if event.FromStatus != nil {
		data["from_status"] = *event.FromStatus
	}

	input := domain.NotificationInput{
		EventID:     event.ID,
		CaseID:      event.CaseID,
		RecipientID: event.RecipientID,
		TemplateID:  "case." + event.Type,
		Data:        data,
	}
	for _, provider := range d.providers {
		if err := provider.Send(ctx, input); err != nil {
			d.log.Warn("notification provider failed",
				zap.Error(err),
				zap.String("provider", provider.Name()),
				zap.String("event_id", event.ID.String()),
			)
		}
	}
}
