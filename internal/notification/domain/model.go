package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// CaseEvent is an outbox row written in the same transaction as the case
// change it describes. A nil RecipientID addresses the clinic admins.
type CaseEvent struct {
	ID          snowflake.ID   `gorm:"primaryKey" json:"id"`
	Type        string         `gorm:"type:varchar(32);not null" json:"type"`
	CaseID      snowflake.ID   `gorm:"not null;index" json:"case_id"`
	RecipientID *snowflake.ID  `json:"recipient_id,omitempty"`
	ActorID     *snowflake.ID  `json:"actor_id,omitempty"`
	FromStatus  *string        `gorm:"type:varchar(32)" json:"from_status,omitempty"`
	ToStatus    string         `gorm:"type:varchar(32);not null" json:"to_status"`
	Payload     datatypes.JSON `gorm:"not null" json:"payload"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
}

func (CaseEvent) TableName() string { return "case_events" }

// Notification is a doctor's inbox entry. Unread means ReadAt is nil.
type Notification struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	RecipientID snowflake.ID `gorm:"not null;uniqueIndex:ux_notifications_event_recipient,priority:2" json:"recipient_id"`
	EventID     snowflake.ID `gorm:"not null;uniqueIndex:ux_notifications_event_recipient,priority:1" json:"event_id"`
	CaseID      snowflake.ID `gorm:"not null" json:"case_id"`
	Type        string       `gorm:"type:varchar(32);not null" json:"type"`
	ToStatus    string       `gorm:"type:varchar(32);not null" json:"to_status"`
	ReadAt      *time.Time   `json:"read_at,omitempty"`
	CreatedAt   time.Time    `gorm:"not null" json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }

type ConsumerOffset struct {
	ConsumerID  string       `gorm:"primaryKey;type:varchar(64)"`
	LastEventID snowflake.ID `gorm:"not null"`
	UpdatedAt   time.Time    `gorm:"not null"`
}

func (ConsumerOffset) TableName() string { return "event_consumer_offsets" }
