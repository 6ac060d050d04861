package auth

import (
	"github.com/nikolayk812/agrocart/internal/port"
	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module(
		"auth",
		fx.Provide(
			NewSession,
			func(s *Session) port.SessionInvalidator { return s },
			func(s *Session) port.TokenSource { return s },
		),
	)
}
