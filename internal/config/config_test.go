package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Port)
	assert.Equal(t, DriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, "trips", cfg.DBConfig.DBName)
	assert.Empty(t, cfg.Maps.APIKey)
	assert.Equal(t, 10*time.Second, cfg.Maps.Timeout)
	assert.Equal(t, 30*time.Minute, cfg.Session.IdleTimeout)
	assert.False(t, cfg.RegionAxisSwap)
	assert.Empty(t, cfg.KafkaConfig.Brokers)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("TRIPS_SERVICE_PORT", "9090")
	t.Setenv("TRIPS_STORAGE_DRIVER", "memory")
	t.Setenv("TRIPS_MAPS_API_KEY", "key")
	t.Setenv("TRIPS_MAPS_CACHE_TTL", "90s")
	t.Setenv("TRIPS_REGION_AXIS_SWAP", "true")
	t.Setenv("TRIPS_KAFKA_BROKERS", "a:9092, b:9092,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Port)
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, "key", cfg.Maps.APIKey)
	assert.Equal(t, 90*time.Second, cfg.Maps.CacheTTL)
	assert.True(t, cfg.RegionAxisSwap)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.KafkaConfig.Brokers)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("TRIPS_STORAGE_DRIVER", "mongo")

	_, err := Load()
	assert.Error(t, err)
}
