package prediction

import (
	"github.com/smallbiznis/returnsight/internal/prediction/repository"
	"github.com/smallbiznis/returnsight/internal/prediction/service"
	"go.uber.org/fx"
)

var Module = fx.Module("prediction.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
