package logging

import (
	"context"
	"os"

	"github.com/nikolayk812/agrocart/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module is not an fx.Module: the file logger decoration must reach every
// other module of the app.
func Module() fx.Option {
	return fx.Options(
		fx.Provide(
			func(cfg config.Config) (*os.File, error) {
				return OpenLogFile(cfg.LogFile)
			},
			NewNotifier,
		),
		fx.Decorate(func(base *zap.Logger, cfg config.Config, file *os.File) *zap.Logger {
			return AttachFileLogger(base, file, cfg.Debug)
		}),
		fx.Invoke(func(lc fx.Lifecycle, file *os.File) {
			if file == nil {
				return
			}
			lc.Append(fx.Hook{
				OnStop: func(_ context.Context) error {
					return file.Close()
				},
			})
		}),
	)
}
