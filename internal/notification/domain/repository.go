package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertEvent(ctx context.Context, db *gorm.DB, event *CaseEvent) error
	ListEventsAfter(ctx context.Context, db *gorm.DB, afterID snowflake.ID, limit int) ([]CaseEvent, error)
	// InsertNotification ignores a duplicate (event, recipient) pair so a
	// replayed event never doubles an inbox entry.
	InsertNotification(ctx context.Context, db *gorm.DB, n *Notification) error
	CountUnread(ctx context.Context, db *gorm.DB, recipientID snowflake.ID) (int64, error)
	MarkRead(ctx context.Context, db *gorm.DB, recipientID snowflake.ID, ids []snowflake.ID, at time.Time) (int64, error)
	GetOffset(ctx context.Context, db *gorm.DB, consumerID string) (snowflake.ID, error)
	SaveOffset(ctx context.Context, db *gorm.DB, consumerID string, lastEventID snowflake.ID, at time.Time) error
}
