package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/railzwaylabs/aligntrack/internal/actorcontext"
	"github.com/railzwaylabs/aligntrack/internal/clock"
	"github.com/railzwaylabs/aligntrack/internal/notification/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Repo  domain.Repository
}

// Service is the inbox read model. Counts are always read from the store;
// nothing is cached between calls.
type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("notification.service"),
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) UnreadCount(ctx context.Context) (int64, error) {
	actor, ok := actorcontext.FromContext(ctx)
	if !ok {
		return 0, domain.ErrUnauthenticated
	}
	return s.repo.CountUnread(ctx, s.db, actor.ID)
}

func (s *Service) MarkRead(ctx context.Context, ids []string) (int64, error) {
	actor, ok := actorcontext.FromContext(ctx)
	if !ok {
		return 0, domain.ErrUnauthenticated
	}

	parsed := make([]snowflake.ID, 0, len(ids))
	for _, value := range ids {
		id, err := snowflake.ParseString(strings.TrimSpace(value))
		if err != nil || id <= 0 {
			return 0, domain.ErrInvalidID
		}
		parsed = append(parsed, id)
	}

	updated, err := s.repo.MarkRead(ctx, s.db, actor.ID, parsed, s.clock.Now(ctx))
	if err != nil {
		return 0, err
	}
	s.log.Debug("notifications marked read",
		zap.String("recipient_id", actor.ID.String()),
		zap.Int64("count", updated),
	)
	return updated, nil
}
