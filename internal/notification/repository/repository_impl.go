package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/railzwaylabs/aligntrack/internal/notification/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertEvent(ctx context.Context, db *gorm.DB, event *domain.CaseEvent) error {
	if event == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Create(event).Error
}

func (r *repo) ListEventsAfter(ctx context.Context, db *gorm.DB, afterID snowflake.ID, limit int) ([]domain.CaseEvent, error) {
	var items []domain.CaseEvent
	err := db.WithContext(ctx).
		Where("id > ?", afterID).
		Order("id asc").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) InsertNotification(ctx context.Context, db *gorm.DB, n *domain.Notification) error {
	if n == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}, {Name: "recipient_id"}},
			DoNothing: true,
		}).
		Create(n).Error
}

func (r *repo) CountUnread(ctx context.Context, db *gorm.DB, recipientID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("recipient_id = ? AND read_at IS NULL", recipientID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repo) MarkRead(ctx context.Context, db *gorm.DB, recipientID snowflake.ID, ids []snowflake.ID, at time.Time) (int64, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("recipient_id = ? AND read_at IS NULL", recipientID)
	if len(ids) > 0 {
		stmt = stmt.Where("id IN ?", ids)
	}
	result := stmt.Update("read_at", at)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repo) GetOffset(ctx context.Context, db *gorm.DB, consumerID string) (snowflake.ID, error) {
	var offset struct {
		LastEventID snowflake.ID
	}
	err := db.WithContext(ctx).Raw(
		`SELECT last_event_id FROM event_consumer_offsets WHERE consumer_id = ?`,
		consumerID,
	).Scan(&offset).Error
	if err != nil {
		return 0, err
	}
	return offset.LastEventID, nil
}

func (r *repo) SaveOffset(ctx context.Context, db *gorm.DB, consumerID string, lastEventID snowflake.ID, at time.Time) error {
	return db.WithContext(ctx).Exec(`
		INSERT INTO event_consumer_offsets (consumer_id, last_event_id, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (consumer_id) DO UPDATE SET last_event_id = EXCLUDED.last_event_id, updated_at = EXCLUDED.updated_at
	`, consumerID, lastEventID, at).Error
}
