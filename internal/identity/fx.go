package identity

import (
	"go.uber.org/fx"

	"github.com/bondexsafety/backoffice/internal/config"
	"github.com/bondexsafety/backoffice/internal/identity/repository"
	"github.com/bondexsafety/backoffice/internal/identity/service"
	"github.com/bondexsafety/backoffice/internal/identity/token"
)

var Module = fx.Module("identity.service",
	fx.Provide(func(cfg config.Config) *token.Manager {
		return token.NewManager(cfg.AuthJWTSecret, cfg.AuthJWTTTL)
	}),
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
