package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type EventType string

const (
	EventTransition        EventType = "transition"
	EventRefinementCreated EventType = "refinement_created"
	EventDecline           EventType = "decline"
)

// Event is emitted for every applied transition. A nil RecipientID addresses
// the clinic admins.
type Event struct {
	Type        EventType
	CaseID      snowflake.ID
	RecipientID *snowflake.ID
	ActorID     *snowflake.ID
	FromStatus  *Status
	ToStatus    Status
	Payload     map[string]any
}

// EventPublisher records events inside the caller's transaction so that an
// aborted transition never notifies anyone.
type EventPublisher interface {
	Publish(ctx context.Context, tx *gorm.DB, event Event) error
}
