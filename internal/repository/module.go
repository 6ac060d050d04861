package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/agrocart/internal/config"
	"github.com/nikolayk812/agrocart/internal/port"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func Module() fx.Option {
	return fx.Module(
		"repository",
		fx.Provide(
			newPool,
			func(pool *pgxpool.Pool, cfg config.Config) (port.CartRepository, error) {
				unit, err := cfg.CurrencyUnit()
				if err != nil {
					return nil, err
				}
				return NewCart(pool, unit)
			},
		),
	)
}

func newPool(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := pool.Ping(ctx); err != nil {
				return fmt.Errorf("pool.Ping: %w", err)
			}
			logger.Info("connected to postgres")
			return nil
		},
		OnStop: func(_ context.Context) error {
			pool.Close()
			return nil
		},
	})

	return pool, nil
}
