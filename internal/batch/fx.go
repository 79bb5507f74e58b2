package batch

import (
	"context"

	"github.com/smallbiznis/returnsight/internal/batch/domain"
	"github.com/smallbiznis/returnsight/internal/batch/service"
	"go.uber.org/fx"
)

var Module = fx.Module("batch.manager",
	fx.Provide(service.New),
	fx.Provide(func(m *service.Manager) domain.Service { return m }),
	fx.Invoke(func(lc fx.Lifecycle, m *service.Manager) {
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				m.Close()
				return nil
			},
		})
	}),
)
