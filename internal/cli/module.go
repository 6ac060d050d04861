package cli

import (
	"os"

	"github.com/nikolayk812/agrocart/internal/logging"
	"github.com/nikolayk812/agrocart/internal/port"
	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module(
		"cli",
		fx.Provide(
			NewRunner,
			func(next *logging.Notifier) port.Notifier {
				return NewConsoleNotifier(os.Stderr, next)
			},
		),
	)
}
