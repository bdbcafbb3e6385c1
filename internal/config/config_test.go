package config

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"climate-dashboard/internal/models"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 1980, cfg.Dashboard.DefaultStartYear)
	assert.Equal(t, []string{"Global", "Arctic"}, cfg.Dashboard.DefaultRegions)
	assert.InDelta(t, 3.3, cfg.Dashboard.ProjectionRate, 1e-12)
	assert.Equal(t, 2100, cfg.Dashboard.ProjectionTarget)
	assert.False(t, cfg.Warehouse.Enabled)
	assert.Zero(t, cfg.Scheduler.RegenerateInterval)

	require.NoError(t, cfg.Validate())

	regions, err := cfg.Dashboard.Regions()
	require.NoError(t, err)
	assert.Equal(t, []models.Region{models.RegionGlobal, models.RegionArctic}, regions.Regions())
}

func TestParse_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DASHBOARD_DEFAULT_REGIONS", "tropics,southern hemisphere")
	t.Setenv("DASHBOARD_SEED", "42")
	t.Setenv("SCHEDULER_REGENERATE_INTERVAL", "1h")
	t.Setenv("DB_NAME", "warehouse")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, uint64(42), cfg.Dashboard.Seed)
	assert.Equal(t, time.Hour, cfg.Scheduler.RegenerateInterval)
	assert.Contains(t, cfg.Database.DSN(), "dbname=warehouse")

	regions, err := cfg.Dashboard.Regions()
	require.NoError(t, err)
	assert.True(t, regions.Has(models.RegionTropics))
	assert.True(t, regions.Has(models.RegionSouthernHemisphere))
}

func TestParse_Error(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-port")

	_, err := Parse()
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "parse env:"))
}

func TestValidate_MaxSeedAccepted(t *testing.T) {
	t.Setenv("DASHBOARD_SEED", "9223372036854775807")
	cfg, err := Parse()
	require.NoError(t, err)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 0 }, want: "server port"},
		{name: "bad level", mutate: func(c *Config) { c.Logging.Level = "verbose" }, want: "log level"},
		{name: "start before record", mutate: func(c *Config) { c.Dashboard.DefaultStartYear = 1800 }, want: "before 1880"},
		{name: "unknown region", mutate: func(c *Config) { c.Dashboard.DefaultRegions = []string{"Atlantis"} }, want: "Atlantis"},
		{name: "target too early", mutate: func(c *Config) { c.Dashboard.ProjectionTarget = 1900 }, want: "projection target"},
		{name: "warehouse without db", mutate: func(c *Config) {
			c.Warehouse.Enabled = true
			c.Database.Host = ""
		}, want: "warehouse enabled"},
		{name: "seed beyond bigint", mutate: func(c *Config) { c.Dashboard.Seed = math.MaxInt64 + 1 }, want: "seed 9223372036854775808 exceeds"},
		{name: "negative interval", mutate: func(c *Config) { c.Scheduler.RegenerateInterval = -time.Second }, want: "regenerate interval"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse()
			require.NoError(t, err)
			tt.mutate(cfg)

			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
