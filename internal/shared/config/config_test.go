package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "/api/v1", cfg.GetAPIBasePath())
	assert.Equal(t, 10, cfg.Booking.MaxNumberAttempts)
	assert.Equal(t, "booking-events", cfg.Kafka.BookingTopic)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.False(t, cfg.Kafka.Enabled)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("BOOKING_NUMBER_MAX_ATTEMPTS", "3")
	t.Setenv("RECONCILE_INTERVAL", "90s")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/tickets")

	cfg := Load()

	assert.Equal(t, 3, cfg.Booking.MaxNumberAttempts)
	assert.Equal(t, 90*time.Second, cfg.Booking.ReconcileInterval)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "postgres://u:p@db:5432/tickets", cfg.Database.DSN)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("BOOKING_NUMBER_MAX_ATTEMPTS", "zero")
	t.Setenv("REDIS_ENABLED", "maybe")

	cfg := Load()

	assert.Equal(t, 10, cfg.Booking.MaxNumberAttempts)
	assert.True(t, cfg.Redis.Enabled)
}

func TestLoad_AttemptsFloor(t *testing.T) {
	t.Setenv("BOOKING_NUMBER_MAX_ATTEMPTS", "0")

	assert.Equal(t, 1, Load().Booking.MaxNumberAttempts)
}
