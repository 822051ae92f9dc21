package notification

import (
	"strings"

	casedomain "github.com/railzwaylabs/aligntrack/internal/casework/domain"
	"github.com/railzwaylabs/aligntrack/internal/config"
	"github.com/railzwaylabs/aligntrack/internal/notification/domain"
	"github.com/railzwaylabs/aligntrack/internal/notification/provider/webhook"
	"github.com/railzwaylabs/aligntrack/internal/notification/repository"
	"github.com/railzwaylabs/aligntrack/internal/notification/service"
	"go.uber.org/fx"
)

var Module = fx.Module("notification.service",
	fx.Provide(repository.Provide),
	fx.Provide(
		service.NewPublisher,
		func(p *service.Publisher) casedomain.EventPublisher { return p },
	),
	fx.Provide(service.New),
	fx.Provide(service.NewDispatcher),
	fx.Provide(
		fx.Annotate(
			providers,
			fx.ResultTags(`group:"notification_providers,flatten"`),
		),
	),
)

func providers(cfg config.Config) []domain.NotificationProvider {
	url := strings.TrimSpace(cfg.Notification.WebhookURL)
	if url == "" {
		return nil
	}
	return []domain.NotificationProvider{webhook.NewProvider(url)}
}
