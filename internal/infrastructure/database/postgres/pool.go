// Package postgres serves reference measurements from PostgreSQL through a
// pgx connection pool, and owns the schema migrations for that table.
package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/turtacn/dti-affinity/internal/config"
	"github.com/turtacn/dti-affinity/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/dti-affinity/pkg/errors"
)

const (
	defaultMaxConns       int32 = 4
	defaultConnectTimeout       = 10 * time.Second
)

// NewPool parses cfg.DSN, applies pool limits and verifies the connection.
func NewPool(ctx context.Context, cfg config.PostgresConfig, log logging.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "parse postgres dsn")
	}
	configurePool(poolCfg, cfg)

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "create postgres pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "postgres connection failed")
	}

	log.Info("connected to postgres",
		logging.String("host", poolCfg.ConnConfig.Host),
		logging.Int("port", int(poolCfg.ConnConfig.Port)),
		logging.String("database", poolCfg.ConnConfig.Database),
	)
	return pool, nil
}

func configurePool(poolCfg *pgxpool.Config, cfg config.PostgresConfig) {
	switch {
	case cfg.MaxConns > 0:
		poolCfg.MaxConns = cfg.MaxConns
	case poolCfg.MaxConns <= 0:
		poolCfg.MaxConns = defaultMaxConns
	}
	if poolCfg.MinConns > poolCfg.MaxConns {
		poolCfg.MinConns = poolCfg.MaxConns
	}
}
