package notify

import (
	"github.com/bondexsafety/backoffice/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("notify",
	fx.Provide(func(cfg config.Config) Sender {
		if cfg.SMTPHost == "" {
			return Noop{}
		}
		return NewSMTP(SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
	}),
)
