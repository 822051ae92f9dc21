package casework

import (
	"github.com/railzwaylabs/aligntrack/internal/casework/repository"
	"github.com/railzwaylabs/aligntrack/internal/casework/service"
	"go.uber.org/fx"
)

var Module = fx.Module("casework.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
