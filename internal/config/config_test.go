package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "HTTP_TIMEOUT_SECONDS", "LOG_LEVEL", "STORE_DRIVER", "REDIS_ADDR", "REDIS_DB",
		"VENDOR_MAX_RETRIES", "VENDOR_RETRY_BASE_MS", "VENDOR_RATE_PER_SECOND"} {
		t.Setenv(k, "")
	}
	cfg := FromEnv()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "memory", cfg.StoreDriver)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 2, cfg.VendorMaxRetries)
	assert.Equal(t, 200*time.Millisecond, cfg.VendorRetryBase)
	assert.Equal(t, 5.0, cfg.VendorRatePerSecond)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "3")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("REDIS_DB", "4")
	t.Setenv("VENDOR_MAX_RETRIES", "x")
	t.Setenv("VENDOR_RATE_PER_SECOND", "0.5")
	t.Setenv("GOOGLE_ADS_DEVELOPER_TOKEN", "dev")

	cfg := FromEnv()
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "postgres", cfg.StoreDriver)
	assert.Equal(t, 4, cfg.RedisDB)
	assert.Equal(t, 2, cfg.VendorMaxRetries)
	assert.Equal(t, 0.5, cfg.VendorRatePerSecond)
	assert.Equal(t, "dev", cfg.GoogleAds.DeveloperToken)
}
