package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "suburbmates")
	t.Setenv("DB_NAME", "suburbmates")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "5432", cfg.DB.Port)
	assert.Equal(t, "disable", cfg.DB.SSLMode)

	assert.Equal(t, 720*time.Hour, cfg.Featured.SlotDuration)
	assert.Equal(t, 30*time.Minute, cfg.Featured.ReservationHold)
	assert.Equal(t, []int{7, 2}, cfg.Featured.ReminderWindows)

	assert.Equal(t, time.Hour, cfg.Worker.ReminderInterval)
	assert.Equal(t, 5*time.Minute, cfg.Worker.SlotExpiryInterval)
	assert.Equal(t, time.Minute, cfg.Worker.ReservationCleanupInterval)
}

func TestLoad_MissingDatabaseConfig(t *testing.T) {
	t.Setenv("DB_HOST", "")
	t.Setenv("DB_USER", "")
	t.Setenv("DB_NAME", "")
	t.Setenv("JWT_SECRET", "test-secret")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database configuration incomplete")
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "suburbmates")
	t.Setenv("DB_NAME", "suburbmates")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_InvalidDuration(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("FEATURED_SLOT_DURATION", "not-a-duration")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FEATURED_SLOT_DURATION")
}

func TestLoad_CustomOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("FEATURED_RESERVATION_HOLD", "45m")
	t.Setenv("FEATURED_REMINDER_WINDOW_1", "14")
	t.Setenv("FEATURED_REMINDER_WINDOW_2", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 45*time.Minute, cfg.Featured.ReservationHold)
	assert.Equal(t, []int{14, 3}, cfg.Featured.ReminderWindows)
}
