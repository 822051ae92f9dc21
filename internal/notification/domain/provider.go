package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// NotificationProvider forwards events to an external channel.
type NotificationProvider interface {
	Name() string
	Send(ctx context.Context, input NotificationInput) error
}

type NotificationInput struct {
	EventID     snowflake.ID
	CaseID      snowflake.ID
	RecipientID *snowflake.ID
	TemplateID  string // e.g. "case.transition"
	Data        map[string]any
}
