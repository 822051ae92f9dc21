package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bwmarrin/snowflake"
	casedomain "github.com/railzwaylabs/aligntrack/internal/casework/domain"
	"github.com/railzwaylabs/aligntrack/internal/clock"
	"github.com/railzwaylabs/aligntrack/internal/notification/domain"
	"go.uber.org/fx"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PublisherParams struct {
	fx.In

	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

// Publisher appends case events to the outbox table.
type Publisher struct {
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func NewPublisher(p PublisherParams) *Publisher {
	return &Publisher{genID: p.GenID, clock: p.Clock, repo: p.Repo}
}

func (p *Publisher) Publish(ctx context.Context, tx *gorm.DB, event casedomain.Event) error {
	payload := event.Payload
	if payload == nil {
		payload = map[string]any{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode case event payload: %w", err)
	}

	var from *string
	if event.FromStatus != nil {
		value := string(*event.FromStatus)
		from = &value
	}

	return p.repo.InsertEvent(ctx, tx, &domain.CaseEvent{
		ID:          p.genID.Generate(),
		Type:        string(event.Type),
		CaseID:      event.CaseID,
		RecipientID: event.RecipientID,
		ActorID:     event.ActorID,
		FromStatus:  from,
		ToStatus:    string(event.ToStatus),
		Payload:     datatypes.JSON(raw),
		CreatedAt:   p.clock.Now(ctx),
	})
}
