package cartapi

import (
	"github.com/nikolayk812/agrocart/internal/port"
	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module(
		"cartapi",
		fx.Provide(
			fx.Annotate(NewClient, fx.As(new(port.CartBackend))),
		),
	)
}
