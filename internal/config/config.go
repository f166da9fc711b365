package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/locvowork/convexhub/apigateway/internal/domain"
)

// Store drivers accepted in STORE_DRIVER.
const (
	DriverDatastore = "datastore"
	DriverPostgres  = "postgres"
	DriverMySQL     = "mysql"
	DriverSQLite    = "sqlite"
	DriverElastic   = "elastic"
)

// EnvConfig mirrors the process environment.
type EnvConfig struct {
	APP_PORT      string
	LOG_FILE_PATH string
	LOG_LEVEL     string

	STORE_DRIVER       string
	STORE_URL          string
	STORE_ACCESS_TOKEN string
	GCP_PROJECT_ID     string

	DB_MAX_OPEN_CONNS    int
	DB_MAX_IDLE_CONNS    int
	DB_CONN_MAX_LIFETIME time.Duration

	EXPORT_LAYOUT_FILE string
}

var DefaultEnvConfig EnvConfig

// LoadEnvConfig reads an optional .env file and then the environment into
// DefaultEnvConfig. Missing required keys are reported as ErrConfigMissing.
func LoadEnvConfig() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to read .env: %w", err)
	}

	cfg, err := ParseEnv(os.LookupEnv)
	if err != nil {
		return err
	}
	DefaultEnvConfig = cfg
	return nil
}

// ParseEnv builds an EnvConfig from lookup and validates it.
func ParseEnv(lookup func(string) (string, bool)) (EnvConfig, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	cfg := EnvConfig{
		APP_PORT:           get("APP_PORT", "8080"),
		LOG_FILE_PATH:      get("LOG_FILE_PATH", ""),
		LOG_LEVEL:          get("LOG_LEVEL", "info"),
		STORE_DRIVER:       strings.ToLower(get("STORE_DRIVER", DriverDatastore)),
		STORE_URL:          get("STORE_URL", ""),
		STORE_ACCESS_TOKEN: get("STORE_ACCESS_TOKEN", ""),
		GCP_PROJECT_ID:     get("GCP_PROJECT_ID", ""),
		EXPORT_LAYOUT_FILE: get("EXPORT_LAYOUT_FILE", ""),
	}

	var err error
	if cfg.DB_MAX_OPEN_CONNS, err = strconv.Atoi(get("DB_MAX_OPEN_CONNS", "10")); err != nil {
		return EnvConfig{}, fmt.Errorf("invalid DB_MAX_OPEN_CONNS: %w", err)
	}
	if cfg.DB_MAX_IDLE_CONNS, err = strconv.Atoi(get("DB_MAX_IDLE_CONNS", "5")); err != nil {
		return EnvConfig{}, fmt.Errorf("invalid DB_MAX_IDLE_CONNS: %w", err)
	}
	if cfg.DB_CONN_MAX_LIFETIME, err = time.ParseDuration(get("DB_CONN_MAX_LIFETIME", "5m")); err != nil {
		return EnvConfig{}, fmt.Errorf("invalid DB_CONN_MAX_LIFETIME: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// Validate checks that every key the selected driver needs is present.
// STORE_URL is always required. STORE_ACCESS_TOKEN is required only for the
// hosted drivers (datastore, elastic); the SQL drivers carry credentials in
// the STORE_URL DSN.
func (c EnvConfig) Validate() error {
	var missing []string
	if c.STORE_URL == "" {
		missing = append(missing, "STORE_URL")
	}

	switch c.STORE_DRIVER {
	case DriverDatastore:
		if c.STORE_ACCESS_TOKEN == "" {
			missing = append(missing, "STORE_ACCESS_TOKEN")
		}
		if c.GCP_PROJECT_ID == "" {
			missing = append(missing, "GCP_PROJECT_ID")
		}
	case DriverElastic:
		if c.STORE_ACCESS_TOKEN == "" {
			missing = append(missing, "STORE_ACCESS_TOKEN")
		}
	case DriverPostgres, DriverMySQL, DriverSQLite:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.STORE_DRIVER)
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrConfigMissing, strings.Join(missing, ", "))
	}
	return nil
}
