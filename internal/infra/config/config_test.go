package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsInDev(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("MONGO_URI", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.InMemory())
	assert.Equal(t, "0.06", cfg.Fees.ServiceFeeRate)
	assert.Equal(t, "0.029", cfg.Fees.ProcessorPercentRate)
	assert.Equal(t, int64(20), cfg.Fees.ProcessorFixedMinor)
	assert.Equal(t, 120, cfg.Calendar.MaxSpanDays)
	assert.Equal(t, 90, cfg.Calendar.WindowHorizon)
	assert.Equal(t, 30, cfg.Calendar.WindowThreshold)
	assert.Equal(t, 60, cfg.Calendar.WindowExtension)
	assert.Equal(t, 30*time.Minute, cfg.Calendar.SessionIdleTTL)
	assert.Equal(t, []time.Duration{time.Second, 5 * time.Second, 30 * time.Second}, cfg.RetryBackoff)
}

func TestLoadRequiresStoresOutsideDev(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("MONGO_URI", "")
	_, err := Load()
	require.ErrorContains(t, err, "MONGO_URI")

	t.Setenv("MONGO_URI", "mongodb://db:27017")
	t.Setenv("KAFKA_BROKERS", "")
	_, err = Load()
	require.ErrorContains(t, err, "KAFKA_BROKERS")

	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.False(t, cfg.InMemory())
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("PROCESSOR_FIXED_MINOR", "twenty")
	_, err := Load()
	require.ErrorContains(t, err, "PROCESSOR_FIXED_MINOR")

	t.Setenv("PROCESSOR_FIXED_MINOR", "")
	t.Setenv("SESSION_IDLE_TTL", "soon")
	_, err = Load()
	require.ErrorContains(t, err, "SESSION_IDLE_TTL")

	t.Setenv("SESSION_IDLE_TTL", "")
	t.Setenv("S3_USE_SSL", "maybe")
	_, err = Load()
	require.ErrorContains(t, err, "S3_USE_SSL")
}
