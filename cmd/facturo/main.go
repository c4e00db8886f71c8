package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/facturo/internal/config"
	"github.com/smallbiznis/facturo/internal/migration"
	"github.com/smallbiznis/facturo/internal/observability"
	"github.com/smallbiznis/facturo/internal/server"
	"github.com/smallbiznis/facturo/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
