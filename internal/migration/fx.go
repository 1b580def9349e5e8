package migration

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/bondexsafety/backoffice/internal/config"
	catalogcategory "github.com/bondexsafety/backoffice/internal/catalog/category/domain"
	catalogproduct "github.com/bondexsafety/backoffice/internal/catalog/product/domain"
	identity "github.com/bondexsafety/backoffice/internal/identity/domain"
	orderdomain "github.com/bondexsafety/backoffice/internal/order/domain"
	"github.com/bondexsafety/backoffice/internal/seed"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// The versioned SQL targets postgres; other dialects get
			// the schema from the models directly.
			if err := conn.AutoMigrate(
				&identity.User{},
				&catalogcategory.Category{},
				&catalogproduct.Product{},
				&orderdomain.Order{},
				&orderdomain.OrderItem{},
				&orderdomain.TimelineEntry{},
				&orderdomain.PaymentEvent{},
			); err != nil {
				return err
			}
		}

		return seed.EnsureDefaultAdmin(conn, cfg)
	}),
)
