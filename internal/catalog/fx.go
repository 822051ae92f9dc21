package catalog

import (
	"github.com/railzwaylabs/aligntrack/internal/catalog/repository"
	"github.com/railzwaylabs/aligntrack/internal/catalog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
