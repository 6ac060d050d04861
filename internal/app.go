package internal

import (
	"context"
	"errors"
	"os"

	"github.com/go-core-fx/logger"
	"github.com/nikolayk812/agrocart/internal/auth"
	"github.com/nikolayk812/agrocart/internal/batch"
	"github.com/nikolayk812/agrocart/internal/cartapi"
	"github.com/nikolayk812/agrocart/internal/cli"
	"github.com/nikolayk812/agrocart/internal/config"
	"github.com/nikolayk812/agrocart/internal/logging"
	"github.com/nikolayk812/agrocart/internal/repository"
	"github.com/nikolayk812/agrocart/internal/server"
	"github.com/nikolayk812/agrocart/internal/store"
	"go.uber.org/fx"
)

// RunClient runs one cartctl command against the cart service.
func RunClient(args []string) error {
	opts, err := cli.ParseOptions(args, os.Stderr)
	if errors.Is(err, cli.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	var runner *cli.Runner

	app := fx.New(
		logger.Module(),
		logger.WithFxDefaultLogger(),
		config.Module(),
		fx.Supply(opts),
		fx.Decorate(func(cfg config.Config) config.Config {
			return opts.Apply(cfg)
		}),
		logging.Module(),
		auth.Module(),
		cartapi.Module(),
		store.Module(),
		batch.Module(),
		cli.Module(),
		fx.Populate(&runner),
	)

	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		return err
	}
	defer func() {
		_ = app.Stop(ctx)
	}()

	return runner.Execute()
}

// RunServer serves the reference cart backend until a shutdown signal.
func RunServer() error {
	app := fx.New(
		logger.Module(),
		logger.WithFxDefaultLogger(),
		config.Module(),
		logging.Module(),
		repository.Module(),
		server.Module(),
	)

	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		return err
	}

	<-app.Wait()

	stopCtx, cancel := context.WithTimeout(ctx, app.StopTimeout())
	defer cancel()

	return app.Stop(stopCtx)
}
