package bootstrap

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// EnforceSchemaGate fails fast during application startup when the schema is
// not active for this build.
func EnforceSchemaGate(lc fx.Lifecycle, gate SchemaGate, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := gate.MustBeActive(ctx); err != nil {
				log.Named("bootstrap").Error("schema gate closed; run `aligntrack migrate`", zap.Error(err))
				return err
			}
			return nil
		},
	})
}
