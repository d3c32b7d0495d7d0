package database

import (
	"context"
	"errors"
	"testing"

	"subscription-group-bot/internal/infrastructure/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*DatabaseService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	ds := NewDatabaseService(config.DatabaseConfig{
		URL:            "postgres://test",
		MaxOpenConns:   5,
		MaxIdleConns:   2,
		SkipMigrations: true,
	})
	ds.open = func(driverName, dsn string) (*sqlx.DB, error) {
		assert.Equal(t, "postgres", driverName)
		assert.Equal(t, "postgres://test", dsn)
		return sqlx.NewDb(db, "sqlmock"), nil
	}
	return ds, mock
}

func TestStartStopLifecycle(t *testing.T) {
	ds, mock := newTestService(t)
	mock.ExpectPing()
	mock.ExpectPing()
	mock.ExpectClose()

	require.NoError(t, ds.Start(context.Background()))
	assert.Equal(t, StateRunning, ds.State())
	assert.NotNil(t, ds.GetDB())
	assert.Error(t, ds.Start(context.Background()), "second start must fail")

	assert.True(t, ds.HealthCheck(context.Background()))
	assert.Equal(t, true, ds.GetStats()["connected"])

	require.NoError(t, ds.Stop())
	assert.Equal(t, StateStopped, ds.State())
	assert.Nil(t, ds.GetDB())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStartPingFailure(t *testing.T) {
	ds, mock := newTestService(t)
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	mock.ExpectClose()

	err := ds.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to ping database")
	assert.Equal(t, StateError, ds.State())
	assert.False(t, ds.HealthCheck(context.Background()))
}

func TestStopWhenNotRunning(t *testing.T) {
	ds := NewDatabaseService(config.DatabaseConfig{})
	assert.Error(t, ds.Stop())
	assert.False(t, ds.HealthCheck(context.Background()))
}
