package migration

import (
	"github.com/bwmarrin/snowflake"
	authdomain "github.com/colmadolabs/colmado/internal/auth/domain"
	"github.com/colmadolabs/colmado/internal/config"
	creditdomain "github.com/colmadolabs/colmado/internal/credit/domain"
	orderdomain "github.com/colmadolabs/colmado/internal/order/domain"
	"github.com/colmadolabs/colmado/internal/seed"
	storedomain "github.com/colmadolabs/colmado/internal/store/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, genID *snowflake.Node) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// sqlite local mode has no migrate driver wired; the schema is
			// small enough to derive from the models.
			if err := conn.AutoMigrate(
				&authdomain.User{},
				&authdomain.Session{},
				&storedomain.Store{},
				&storedomain.StoreProduct{},
				&creditdomain.CreditRelationship{},
				&creditdomain.BalanceHistoryEntry{},
				&orderdomain.Order{},
				&orderdomain.OrderItem{},
			); err != nil {
				return err
			}
		}

		if cfg.SeedDemoData {
			return seed.EnsureDemoData(conn, genID)
		}
		return nil
	}),
)
