package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/payrecord/internal/config"
	"github.com/smallbiznis/payrecord/internal/migration"
	"github.com/smallbiznis/payrecord/internal/observability"
	"github.com/smallbiznis/payrecord/internal/server"
	"github.com/smallbiznis/payrecord/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	app := fx.New(
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),

		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
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
