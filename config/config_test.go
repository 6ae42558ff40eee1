package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "5005", cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowOrigins)
	assert.Equal(t, "s3", cfg.ObjectStore.Driver)
	assert.Equal(t, "logs", cfg.ObjectStore.Bucket)
	assert.Equal(t, 100, cfg.Search.DefaultLimit)
	assert.Equal(t, "name", cfg.Search.Ordering)
	assert.Equal(t, 5, cfg.Search.SampleLines)
	assert.Equal(t, 30*time.Second, cfg.Archiver.MaxBatchWait)
	assert.False(t, cfg.Archiver.Enabled)
}

func TestNewConfig_EnvOverrides(t *testing.T) {
	t.Setenv("OBJECTSTORE_DRIVER", "fs")
	t.Setenv("SEARCH_PREFETCH", "1")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "fs", cfg.ObjectStore.Driver)
	assert.Equal(t, 1, cfg.Search.Prefetch)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
}
