package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/returnsight/internal/analytics"
	"github.com/smallbiznis/returnsight/internal/batch"
	"github.com/smallbiznis/returnsight/internal/clock"
	"github.com/smallbiznis/returnsight/internal/config"
	"github.com/smallbiznis/returnsight/internal/migration"
	"github.com/smallbiznis/returnsight/internal/model"
	"github.com/smallbiznis/returnsight/internal/observability"
	"github.com/smallbiznis/returnsight/internal/order"
	"github.com/smallbiznis/returnsight/internal/prediction"
	"github.com/smallbiznis/returnsight/internal/ratelimit"
	"github.com/smallbiznis/returnsight/internal/server"
	"github.com/smallbiznis/returnsight/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		clock.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		migration.Module,

		model.Module,
		prediction.Module,
		order.Module,
		analytics.Module,
		batch.Module,
		ratelimit.Module,

		server.Module,
	)

	app.Run()
}

func registerSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
