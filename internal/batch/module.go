package batch

import (
	"github.com/nikolayk812/agrocart/internal/store"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func Module() fx.Option {
	return fx.Module(
		"batch",
		fx.Provide(func(s *store.Store, logger *zap.Logger) *Reconciler {
			return New(s, logger)
		}),
	)
}
