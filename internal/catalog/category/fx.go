package category

import (
	"github.com/bondexsafety/backoffice/internal/catalog/category/repository"
	"github.com/bondexsafety/backoffice/internal/catalog/category/service"
	"go.uber.org/fx"
)

var Module = fx.Module("category.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
