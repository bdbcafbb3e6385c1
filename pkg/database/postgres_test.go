package database

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"climate-dashboard/pkg/logging"
	"climate-dashboard/pkg/metrics"
)

func TestConfigDSN(t *testing.T) {
	cfg := &Config{
		Host:     "db.internal",
		Port:     5433,
		User:     "climate",
		Password: "secret",
		Database: "climate_warehouse",
		SSLMode:  "require",
	}

	want := "host=db.internal port=5433 user=climate password=secret dbname=climate_warehouse sslmode=require"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}

func TestClose_Idempotent(t *testing.T) {
	cfg := &Config{Host: "localhost", Port: 5432, User: "climate", Database: "climate_warehouse", SSLMode: "disable"}

	// sqlx.Open does not dial, so no server is needed.
	db, err := sqlx.Open("postgres", cfg.DSN())
	require.NoError(t, err)

	p := &PostgresDB{
		db:      db,
		logger:  logging.NewNopLogger(),
		metrics: metrics.NewTestCollector(),
		config:  cfg,
		done:    make(chan struct{}),
	}

	require.NotPanics(t, func() {
		assert.NoError(t, p.Close())
		assert.NoError(t, p.Close())
	})

	select {
	case <-p.done:
	default:
		t.Fatal("done channel not closed")
	}
}
