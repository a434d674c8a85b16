package order

import (
	"github.com/colmadolabs/colmado/internal/order/repository"
	"github.com/colmadolabs/colmado/internal/order/service"
	"go.uber.org/fx"
)

var Module = fx.Module("order.service",
	fx.Provide(repository.ProvideRepository),
	fx.Provide(service.New),
)
