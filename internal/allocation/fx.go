package allocation

import (
	"github.com/railzwaylabs/aligntrack/internal/allocation/repository"
	"github.com/railzwaylabs/aligntrack/internal/allocation/service"
	"go.uber.org/fx"
)

var Module = fx.Module("allocation.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
