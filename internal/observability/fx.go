package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("observability",
	fx.Provide(NewLogger),
	fx.Provide(NewRegistry),
	fx.Provide(NewMetrics),
	fx.Invoke(func(lc fx.Lifecycle, log *zap.Logger) {
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				_ = log.Sync()
				return nil
			},
		})
	}),
)

// NewRegistry holds the domain metrics. Runtime and DB pool collectors stay
// on the default registry; /metrics serves both.
func NewRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}
