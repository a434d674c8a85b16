package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/colmadolabs/colmado/internal/auth"
	"github.com/colmadolabs/colmado/internal/auth/session"
	"github.com/colmadolabs/colmado/internal/authorization"
	"github.com/colmadolabs/colmado/internal/clock"
	"github.com/colmadolabs/colmado/internal/config"
	"github.com/colmadolabs/colmado/internal/credit"
	"github.com/colmadolabs/colmado/internal/migration"
	"github.com/colmadolabs/colmado/internal/observability"
	"github.com/colmadolabs/colmado/internal/order"
	"github.com/colmadolabs/colmado/internal/ratelimit"
	"github.com/colmadolabs/colmado/internal/server"
	"github.com/colmadolabs/colmado/internal/store"
	"github.com/colmadolabs/colmado/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		auth.Module,
		session.Module,
		authorization.Module,
		store.Module,
		credit.Module,
		order.Module,
		ratelimit.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
