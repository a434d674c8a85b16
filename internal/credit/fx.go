package credit

import (
	"github.com/colmadolabs/colmado/internal/credit/repository"
	"github.com/colmadolabs/colmado/internal/credit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("credit.service",
	fx.Provide(repository.ProvideRepository),
	fx.Provide(service.New),
)
