// Package config loads runtime settings for the dashboard commands.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"climate-dashboard/internal/models"
)

// Config is the root configuration shared by the server, exporter and migrate commands.
type Config struct {
	Server    ServerConfig    `envPrefix:"SERVER_"`
	Database  DatabaseConfig  `envPrefix:"DB_"`
	Logging   LoggingConfig   `envPrefix:"LOG_"`
	Dashboard DashboardConfig `envPrefix:"DASHBOARD_"`
	Warehouse WarehouseConfig `envPrefix:"WAREHOUSE_"`
	Scheduler SchedulerConfig `envPrefix:"SCHEDULER_"`
}

type ServerConfig struct {
	Host         string        `env:"HOST" envDefault:"0.0.0.0"`
	Port         int           `env:"PORT" envDefault:"8080"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout  time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
}

type DatabaseConfig struct {
	Host            string        `env:"HOST" envDefault:"localhost"`
	Port            int           `env:"PORT" envDefault:"5432"`
	User            string        `env:"USER" envDefault:"postgres"`
	Password        string        `env:"PASSWORD"`
	Database        string        `env:"NAME" envDefault:"climate_warehouse"`
	SSLMode         string        `env:"SSLMODE" envDefault:"disable"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"30m"`
	ConnMaxIdleTime time.Duration `env:"CONN_MAX_IDLE_TIME" envDefault:"5m"`
}

type LoggingConfig struct {
	Level string `env:"LEVEL" envDefault:"info"`
}

// DashboardConfig holds the dashboard's default view and generator seed.
type DashboardConfig struct {
	DefaultStartYear int      `env:"DEFAULT_START_YEAR" envDefault:"1980"`
	DefaultRegions   []string `env:"DEFAULT_REGIONS" envDefault:"Global,Arctic" envSeparator:","`
	ProjectionRate   float64  `env:"PROJECTION_RATE" envDefault:"3.3"`
	ProjectionTarget int      `env:"PROJECTION_TARGET" envDefault:"2100"`
	// Seed 0 draws a fresh seed from the clock on every generation.
	Seed uint64 `env:"SEED" envDefault:"0"`
}

// WarehouseConfig toggles publishing generated datasets to Postgres.
type WarehouseConfig struct {
	Enabled        bool          `env:"ENABLED" envDefault:"false"`
	PublishTimeout time.Duration `env:"PUBLISH_TIMEOUT" envDefault:"30s"`
	MaxFailures    uint32        `env:"MAX_FAILURES" envDefault:"3"`
	OpenTimeout    time.Duration `env:"OPEN_TIMEOUT" envDefault:"1m"`
}

// SchedulerConfig controls periodic regeneration; a zero interval disables it.
type SchedulerConfig struct {
	RegenerateInterval time.Duration `env:"REGENERATE_INTERVAL" envDefault:"0s"`
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	return Parse()
}

// Parse builds a Config from the process environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate checks cross-field constraints env tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server port %d out of range", c.Server.Port))
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error", "fatal":
	default:
		errs = append(errs, fmt.Errorf("unknown log level %q", c.Logging.Level))
	}

	if c.Dashboard.DefaultStartYear < models.TemperatureStartYear {
		errs = append(errs, fmt.Errorf("default start year %d is before %d", c.Dashboard.DefaultStartYear, models.TemperatureStartYear))
	}
	// The warehouse stores seeds in a BIGINT column.
	if c.Dashboard.Seed > math.MaxInt64 {
		errs = append(errs, fmt.Errorf("seed %d exceeds %d", c.Dashboard.Seed, int64(math.MaxInt64)))
	}
	if _, err := c.Dashboard.Regions(); err != nil {
		errs = append(errs, err)
	}
	if c.Dashboard.ProjectionTarget <= c.Dashboard.DefaultStartYear {
		errs = append(errs, fmt.Errorf("projection target %d must be after the default start year", c.Dashboard.ProjectionTarget))
	}

	if c.Warehouse.Enabled {
		if c.Database.Host == "" || c.Database.Database == "" {
			errs = append(errs, errors.New("warehouse enabled but database host or name is empty"))
		}
		if c.Warehouse.MaxFailures == 0 {
			errs = append(errs, errors.New("warehouse max failures must be positive"))
		}
	}

	if c.Scheduler.RegenerateInterval < 0 {
		errs = append(errs, fmt.Errorf("negative regenerate interval %s", c.Scheduler.RegenerateInterval))
	}

	return errors.Join(errs...)
}

// Regions parses the default region list.
func (d DashboardConfig) Regions() (models.RegionSelection, error) {
	return models.ParseRegionSelection(strings.Join(d.DefaultRegions, ","))
}

// DSN renders the lib/pq connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode)
}
