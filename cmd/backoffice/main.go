package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/bondexsafety/backoffice/internal/clock"
	"github.com/bondexsafety/backoffice/internal/config"
	"github.com/bondexsafety/backoffice/internal/migration"
	"github.com/bondexsafety/backoffice/internal/observability"
	"github.com/bondexsafety/backoffice/internal/server"
	"github.com/bondexsafety/backoffice/pkg/db"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
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
