package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_DefaultValues(t *testing.T) {
	// 環境変数をクリア
	envVars := []string{
		"PORT", "SERVER_READ_TIMEOUT", "SERVER_WRITE_TIMEOUT",
		"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE",
		"REDIS_HOST", "REDIS_PORT", "REDIS_PASSWORD", "REDIS_DB",
		"RESERVATION_TTL", "REAPER_INTERVAL", "REAPER_BATCH_SIZE",
		"PRICE_TOLERANCE", "AVAILABILITY_CACHE_TTL", "CHECKOUT_TTL",
		"COUPON_SERVICE_URL", "COUPON_SERVICE_TIMEOUT", "METRICS_AUTH_TOKEN",
	}
	for _, env := range envVars {
		os.Unsetenv(env)
	}

	cfg := Load()

	// Server defaults
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)

	// Database defaults
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, "ticket_inventory", cfg.Database.DBName)
	assert.Equal(t, "disable", cfg.Database.SSLMode)

	// Redis defaults
	assert.Equal(t, "localhost", cfg.Redis.Host)
	assert.Equal(t, "6379", cfg.Redis.Port)
	assert.Equal(t, 0, cfg.Redis.DB)

	// Reservation defaults
	assert.Equal(t, 15*time.Minute, cfg.Reservation.TTL)
	assert.Equal(t, 30*time.Second, cfg.Reservation.ReaperInterval)
	assert.Equal(t, 100, cfg.Reservation.ReaperBatchSize)
	assert.Equal(t, 0, cfg.Reservation.PriceTolerance)
	assert.Equal(t, 10*time.Second, cfg.Reservation.AvailabilityCacheTTL)
	assert.Equal(t, time.Hour, cfg.Reservation.CheckoutTTL)
}

func TestLoad_CustomValues(t *testing.T) {
	os.Setenv("PORT", "9090")
	os.Setenv("RESERVATION_TTL", "5m")
	os.Setenv("REAPER_INTERVAL", "10s")
	os.Setenv("PRICE_TOLERANCE", "50")
	os.Setenv("COUPON_SERVICE_URL", "http://coupons.internal:8090")
	defer func() {
		os.Unsetenv("PORT")
		os.Unsetenv("RESERVATION_TTL")
		os.Unsetenv("REAPER_INTERVAL")
		os.Unsetenv("PRICE_TOLERANCE")
		os.Unsetenv("COUPON_SERVICE_URL")
	}()

	cfg := Load()

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 5*time.Minute, cfg.Reservation.TTL)
	assert.Equal(t, 10*time.Second, cfg.Reservation.ReaperInterval)
	assert.Equal(t, 50, cfg.Reservation.PriceTolerance)
	assert.Equal(t, "http://coupons.internal:8090", cfg.Coupon.BaseURL)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := &DatabaseConfig{
		Host:     "localhost",
		Port:     "5432",
		User:     "postgres",
		Password: "secret",
		DBName:   "testdb",
		SSLMode:  "disable",
	}

	dsn := cfg.DSN()

	assert.Contains(t, dsn, "host=localhost")
	assert.Contains(t, dsn, "port=5432")
	assert.Contains(t, dsn, "user=postgres")
	assert.Contains(t, dsn, "password=secret")
	assert.Contains(t, dsn, "dbname=testdb")
	assert.Contains(t, dsn, "sslmode=disable")
}

func TestRedisConfig_Addr(t *testing.T) {
	cfg := &RedisConfig{Host: "localhost", Port: "6379"}

	assert.Equal(t, "localhost:6379", cfg.Addr())
}

func TestGetEnv(t *testing.T) {
	os.Setenv("TEST_ENV_VAR", "custom_value")
	defer os.Unsetenv("TEST_ENV_VAR")

	assert.Equal(t, "custom_value", getEnv("TEST_ENV_VAR", "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT_VAR", "default"))
}

func TestGetIntEnv(t *testing.T) {
	os.Setenv("TEST_INT_VAR", "42")
	defer os.Unsetenv("TEST_INT_VAR")

	assert.Equal(t, 42, getIntEnv("TEST_INT_VAR", 0))
	assert.Equal(t, 7, getIntEnv("NON_EXISTENT_VAR", 7))

	os.Setenv("TEST_INT_VAR", "not-a-number")
	assert.Equal(t, 7, getIntEnv("TEST_INT_VAR", 7))
}

func TestGetDurationEnv(t *testing.T) {
	os.Setenv("TEST_DURATION_VAR", "90s")
	defer os.Unsetenv("TEST_DURATION_VAR")

	assert.Equal(t, 90*time.Second, getDurationEnv("TEST_DURATION_VAR", time.Minute))
	assert.Equal(t, time.Minute, getDurationEnv("NON_EXISTENT_VAR", time.Minute))

	os.Setenv("TEST_DURATION_VAR", "invalid")
	assert.Equal(t, time.Minute, getDurationEnv("TEST_DURATION_VAR", time.Minute))
}
