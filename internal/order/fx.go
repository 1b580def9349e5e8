package order

import (
	"github.com/bondexsafety/backoffice/internal/order/repository"
	"github.com/bondexsafety/backoffice/internal/order/service"
	"go.uber.org/fx"
)

var Module = fx.Module("order.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
