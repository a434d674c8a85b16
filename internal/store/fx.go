package store

import (
	"github.com/colmadolabs/colmado/internal/store/repository"
	"github.com/colmadolabs/colmado/internal/store/service"
	"go.uber.org/fx"
)

var Module = fx.Module("store.service",
	fx.Provide(repository.ProvideRepository),
	fx.Provide(service.New),
)
