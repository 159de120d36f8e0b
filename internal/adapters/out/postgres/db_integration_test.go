package postgres_test

import (
	"context"
	"errors"
	"testing"

	postgres_adapter "fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/adapters/out/postgres/pgtest"
	"fulfillment/internal/pkg/errs"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_PGXDriverReportsConflicts(t *testing.T) {
	ctx := context.Background()
	pg, err := pgtest.StartWithDriver(ctx, postgres_adapter.DriverPGX)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = pg.Terminate(context.Background())
	})

	factory := postgres_adapter.NewGormUnitOfWorkFactory(pg.DB)

	first := factory.Create()
	require.NoError(t, first.Begin(ctx))
	require.NoError(t, first.OrderRepository().Add(ctx, createTestOrder("ORD-1001")))
	require.NoError(t, first.Commit(ctx))

	second := factory.Create()
	require.NoError(t, second.Begin(ctx))
	err = second.OrderRepository().Add(ctx, createTestOrder("ORD-1001"))
	_ = second.Rollback(ctx)

	require.ErrorIs(t, err, errs.ErrConflict)
	var conflict *errs.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "order number or tracking number already exists (ux_orders_number)", conflict.Reason)
	var pgErr *pgconn.PgError
	assert.True(t, errors.As(conflict.Cause, &pgErr))
}

func TestParseDriver(t *testing.T) {
	for name, want := range map[string]postgres_adapter.Driver{
		"":         postgres_adapter.DriverPQ,
		"postgres": postgres_adapter.DriverPQ,
		"lib/pq":   postgres_adapter.DriverPQ,
		"pgx":      postgres_adapter.DriverPGX,
	} {
		got, err := postgres_adapter.ParseDriver(name)
		require.NoError(t, err)
		assert.Equal(t, want, got, name)
	}

	_, err := postgres_adapter.ParseDriver("mysql")
	require.Error(t, err)
}
