package media

import (
	"github.com/bondexsafety/backoffice/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("media",
	fx.Provide(func(cfg config.Config) (Storage, error) {
		return NewDisk(cfg.MediaDir, cfg.MediaBaseURL)
	}),
)
