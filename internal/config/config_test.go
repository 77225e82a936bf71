package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_TYPE", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg := Load()

	assert.Equal(t, "payrecord", cfg.AppName)
	assert.Equal(t, "postgres", cfg.DBType)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, "payment.created", cfg.Kafka.Topic)
	assert.False(t, cfg.RateLimit.Enabled)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DATABASE_TYPE", "mysql")
	t.Setenv("DATABASE_PORT", "3306")
	t.Setenv("DATABASE_MAX_OPEN_CONN", "not-a-number")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("RATE_LIMIT_ENABLED", "yes")
	t.Setenv("RATE_LIMIT_CREATE_RATE", "2.5")

	cfg := Load()

	assert.Equal(t, "mysql", cfg.DBType)
	assert.Equal(t, 20, cfg.DBMaxOpenConn)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 2.5, cfg.RateLimit.CreateRate)

	dbCfg := cfg.Database()
	assert.Equal(t, "mysql", dbCfg.Type)
	assert.Equal(t, "3306", dbCfg.Port)
}

func TestRuntimeConfigDefaultsWithoutFile(t *testing.T) {
	cfg := Config{
		RuntimeConfigPaths: []string{t.TempDir()},
		RateLimit:          RateLimitConfig{CreateRate: 5, CreateBurst: 10},
	}

	holder, err := NewRuntimeConfigHolder(cfg)
	require.NoError(t, err)

	current := holder.Get()
	assert.Equal(t, "info", current.LogLevel)
	assert.Equal(t, 5.0, current.CreateRateLimit.Rate)
	assert.Equal(t, 10, current.CreateRateLimit.Burst)
}

func TestRuntimeConfigReadsFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte("runtime:\n  logLevel: debug\n  createRateLimit:\n    rate: 1\n    burst: 3\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "payrecord.yml"), content, 0o600))

	holder, err := NewRuntimeConfigHolder(Config{
		RuntimeConfigPaths: []string{dir},
		RateLimit:          RateLimitConfig{CreateRate: 5, CreateBurst: 10},
	})
	require.NoError(t, err)

	current := holder.Get()
	assert.Equal(t, "debug", current.LogLevel)
	assert.Equal(t, 1.0, current.CreateRateLimit.Rate)
	assert.Equal(t, 3, current.CreateRateLimit.Burst)
}

func TestRuntimeConfigRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte("runtime:\n  logLevel: loud\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "payrecord.yml"), content, 0o600))

	_, err := NewRuntimeConfigHolder(Config{
		RuntimeConfigPaths: []string{dir},
		RateLimit:          RateLimitConfig{CreateRate: 5, CreateBurst: 10},
	})
	require.Error(t, err)
}

func TestRuntimeConfigApplyNotifiesListeners(t *testing.T) {
	holder, err := NewRuntimeConfigHolder(Config{
		RuntimeConfigPaths: []string{t.TempDir()},
		RateLimit:          RateLimitConfig{CreateRate: 5, CreateBurst: 10},
	})
	require.NoError(t, err)

	var seen []string
	holder.OnChange(func(cfg RuntimeConfig) {
		seen = append(seen, cfg.LogLevel)
	})

	require.NoError(t, holder.apply(RuntimeConfig{
		LogLevel:        "warn",
		CreateRateLimit: RateLimitPolicy{Rate: 1, Burst: 1},
	}))
	assert.Equal(t, []string{"warn"}, seen)
	assert.Equal(t, "warn", holder.Get().LogLevel)

	err = holder.apply(RuntimeConfig{LogLevel: "warn"})
	require.Error(t, err)
	assert.Equal(t, []string{"warn"}, seen)
	assert.Equal(t, 1, holder.Get().CreateRateLimit.Burst)
}
