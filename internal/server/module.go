package server

import (
	"net/http"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module(
		"server",
		fx.Provide(NewHTTPServer),
		fx.Invoke(func(*http.Server) {}),
	)
}
