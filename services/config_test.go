package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"habitat-nav/algorithms"
	"habitat-nav/models"
	"habitat-nav/services"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_DRIVER", "GRID_RESOLUTION", "MAX_ITERATIONS", "BATCH_CONCURRENCY", "LOG_FLUSH_INTERVAL", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg := services.LoadConfig()
	assert.Equal(t, "3000", cfg.Port)
	assert.Empty(t, cfg.DBDriver)
	assert.Equal(t, models.GridResolution, cfg.GridResolution)
	assert.Equal(t, algorithms.MaxIterations, cfg.MaxIterations)
	assert.Equal(t, 4, cfg.BatchConcurrency)
	assert.Equal(t, 10*time.Second, cfg.LogFlushInterval)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("GRID_RESOLUTION", "0.25")
	t.Setenv("MAX_ITERATIONS", "1000")
	t.Setenv("LOG_FLUSH_INTERVAL", "2s")

	cfg := services.LoadConfig()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 0.25, cfg.GridResolution)
	assert.Equal(t, 1000, cfg.MaxIterations)
	assert.Equal(t, 2*time.Second, cfg.LogFlushInterval)
}

func TestLoadConfig_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("GRID_RESOLUTION", "-0.5")
	t.Setenv("MAX_ITERATIONS", "lots")
	t.Setenv("BATCH_CONCURRENCY", "0")
	t.Setenv("LOG_FLUSH_INTERVAL", "soon")

	cfg := services.LoadConfig()
	assert.Equal(t, models.GridResolution, cfg.GridResolution)
	assert.Equal(t, algorithms.MaxIterations, cfg.MaxIterations)
	assert.Equal(t, 4, cfg.BatchConcurrency)
	assert.Equal(t, 10*time.Second, cfg.LogFlushInterval)
}

func TestOpenDatabase(t *testing.T) {
	_, err := services.OpenDatabase(services.Config{}, nil)
	assert.ErrorIs(t, err, services.ErrDatabaseDisabled)

	_, err = services.OpenDatabase(services.Config{DBDriver: "postgres"}, nil)
	assert.Error(t, err)

	_, err = services.OpenDatabase(services.Config{DBDriver: "mysql"}, nil)
	assert.Error(t, err)
}
