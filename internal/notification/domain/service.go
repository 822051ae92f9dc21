package domain

import (
	"context"
	"errors"
)

type Service interface {
	UnreadCount(ctx context.Context) (int64, error)
	// MarkRead marks the given notifications read, or all of the caller's
	// unread notifications when ids is empty.
	MarkRead(ctx context.Context, ids []string) (int64, error)
}

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrInvalidID       = errors.New("invalid_notification_id")
)
