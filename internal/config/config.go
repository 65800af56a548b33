package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/mytrips/service-trips/pkg/config"
)

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// StorageConfig selects where destinations and placemarks are kept.
type StorageConfig struct {
	Driver     string
	SQLitePath string
}

// MapsConfig configures the Google Maps Platform clients. An empty APIKey
// disables search, directions and scene lookups.
type MapsConfig struct {
	APIKey       string
	LanguageCode string
	Timeout      time.Duration
	CacheTTL     time.Duration
}

// SessionConfig controls map session eviction.
type SessionConfig struct {
	IdleTimeout   time.Duration
	SweepInterval time.Duration
}

// ServiceConfig holds all configuration for the trips service.
type ServiceConfig struct {
	Port           string
	AppEnv         string
	DBConfig       config.DatabaseConfig
	JWTConfig      config.JWTConfig
	KafkaConfig    config.KafkaConfig
	Storage        StorageConfig
	Maps           MapsConfig
	Session        SessionConfig
	RegionAxisSwap bool
}

// Load reads configuration from TRIPS_* environment variables.
func Load() (*ServiceConfig, error) {
	v, err := config.Load("TRIPS")
	if err != nil {
		return nil, err
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*ServiceConfig, error) {
	v.SetDefault("DB_NAME", "trips")
	v.SetDefault("STORAGE_DRIVER", DriverPostgres)
	v.SetDefault("SQLITE_PATH", "trips.db")
	v.SetDefault("MAPS_LANGUAGE", "en")
	v.SetDefault("MAPS_TIMEOUT", "10s")
	v.SetDefault("MAPS_CACHE_TTL", "5m")
	v.SetDefault("SESSION_IDLE_TIMEOUT", "30m")
	v.SetDefault("SESSION_SWEEP_INTERVAL", "1m")
	v.SetDefault("REGION_AXIS_SWAP", false)

	cfg := &ServiceConfig{
		Port:        config.GetServicePort(v, "SERVICE_PORT"),
		AppEnv:      config.GetAppEnv(v),
		DBConfig:    config.LoadDatabaseConfig(v, "DB_NAME"),
		JWTConfig:   config.LoadJWTConfig(v),
		KafkaConfig: config.LoadKafkaConfig(v),
		Storage: StorageConfig{
			Driver:     v.GetString("STORAGE_DRIVER"),
			SQLitePath: v.GetString("SQLITE_PATH"),
		},
		Maps: MapsConfig{
			APIKey:       v.GetString("MAPS_API_KEY"),
			LanguageCode: v.GetString("MAPS_LANGUAGE"),
			Timeout:      v.GetDuration("MAPS_TIMEOUT"),
			CacheTTL:     v.GetDuration("MAPS_CACHE_TTL"),
		},
		Session: SessionConfig{
			IdleTimeout:   v.GetDuration("SESSION_IDLE_TIMEOUT"),
			SweepInterval: v.GetDuration("SESSION_SWEEP_INTERVAL"),
		},
		RegionAxisSwap: v.GetBool("REGION_AXIS_SWAP"),
	}

	switch cfg.Storage.Driver {
	case DriverPostgres, DriverSQLite, DriverMemory:
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
	if cfg.Session.IdleTimeout <= 0 || cfg.Session.SweepInterval <= 0 {
		return nil, fmt.Errorf("session timeouts must be positive")
	}

	return cfg, nil
}
