package repository_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

const (
	postgresImage  = "postgres:17.6-alpine3.22"
	migrationsGlob = "../migrations/*.up.sql"
)

// cartDB is a disposable PostgreSQL with the cart schema applied.
type cartDB struct {
	container *postgres.PostgresContainer
	pool      *pgxpool.Pool
}

func startCartDB(ctx context.Context) (*cartDB, error) {
	migrations, err := filepath.Glob(migrationsGlob)
	if err != nil {
		return nil, fmt.Errorf("filepath.Glob: %w", err)
	}
	if len(migrations) == 0 {
		return nil, fmt.Errorf("no migrations match %s", migrationsGlob)
	}
	slices.Sort(migrations)

	container, err := postgres.Run(ctx, postgresImage,
		postgres.WithDatabase("agrocart"),
		postgres.WithUsername("agrocart"),
		postgres.WithPassword("agrocart"),
		postgres.BasicWaitStrategies(),
		postgres.WithInitScripts(migrations...),
	)
	if err != nil {
		return nil, fmt.Errorf("postgres.Run: %w", err)
	}

	d := &cartDB{container: container}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, errors.Join(fmt.Errorf("container.ConnectionString: %w", err), d.close())
	}

	d.pool, err = pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("pgxpool.New: %w", err), d.close())
	}

	return d, nil
}

func (d *cartDB) truncate(ctx context.Context) error {
	if _, err := d.pool.Exec(ctx, "TRUNCATE TABLE cart_items RESTART IDENTITY"); err != nil {
		return fmt.Errorf("pool.Exec: %w", err)
	}
	return nil
}

func (d *cartDB) close() error {
	if d.pool != nil {
		d.pool.Close()
	}
	if err := testcontainers.TerminateContainer(d.container); err != nil {
		return fmt.Errorf("testcontainers.TerminateContainer: %w", err)
	}
	return nil
}
