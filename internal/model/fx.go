package model

import (
	"github.com/smallbiznis/returnsight/internal/model/service"
	"go.uber.org/fx"
)

var Module = fx.Module("model.engine",
	fx.Provide(service.New),
)
