//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/turtacn/dti-affinity/internal/config"
	"github.com/turtacn/dti-affinity/internal/domain/reference"
	"github.com/turtacn/dti-affinity/internal/infrastructure/database/postgres"
	"github.com/turtacn/dti-affinity/internal/infrastructure/monitoring/logging"
)

// startPostgres launches a PostgreSQL 16 container, applies the migrations and
// returns its DSN.
func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "affinity_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://test:test@%s:%s/affinity_test?sslmode=disable", host, port.Port())
	require.NoError(t, postgres.RunMigrations(dsn))
	return dsn
}

func TestReferenceSource_RoundTrip(t *testing.T) {
	dsn := startPostgres(t)
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	records := []reference.Record{
		{Drug: "CCO", Target: "MKTAYIAK", Affinity: 5.5},
		{Drug: "c1ccccc1", Target: "MKTAYIAK", Affinity: 6.25},
		{Drug: "CCO", Target: "MKTAYIAK", Affinity: 7},
	}
	n, err := postgres.Store(ctx, pool, records)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	src := postgres.NewReferenceSource(config.PostgresConfig{DSN: dsn}, logging.NewNopLogger())
	got, err := src.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, records, got)

	tbl, err := reference.Build(ctx, src, reference.RuleMin)
	require.NoError(t, err)
	y, ok := tbl.Lookup("cco", "MKTAYIAK")
	require.True(t, ok)
	assert.Equal(t, 5.5, y)
}

func TestMigrations_StatusAndRollback(t *testing.T) {
	dsn := startPostgres(t)

	version, dirty, err := postgres.MigrationStatus(dsn)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	require.NoError(t, postgres.RunMigrations(dsn), "re-running is a no-op")

	require.NoError(t, postgres.RollbackMigration(dsn, 1))
	version, _, err = postgres.MigrationStatus(dsn)
	require.NoError(t, err)
	assert.Equal(t, uint(0), version)
}
