package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 10, cfg.PerPage)
	assert.Equal(t, 200*time.Millisecond, cfg.MockLatencyMin)
	assert.Equal(t, 500*time.Millisecond, cfg.MockLatencyMax)
	assert.Equal(t, 60, cfg.ResendWindowSeconds)
	assert.Equal(t, time.Second, cfg.CountdownTick)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CONSOLE_PER_PAGE", "25")
	t.Setenv("CONSOLE_MOCK_LATENCY_MIN", "0")
	t.Setenv("CONSOLE_MOCK_LATENCY_MAX", "0")
	t.Setenv("CONSOLE_COUNTDOWN_TICK", "10ms")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.PerPage)
	assert.Zero(t, cfg.MockLatencyMax)
	assert.Equal(t, 10*time.Millisecond, cfg.CountdownTick)
}

func TestLoadRejectsInvalidLatencyRange(t *testing.T) {
	t.Setenv("CONSOLE_MOCK_LATENCY_MIN", "500ms")
	t.Setenv("CONSOLE_MOCK_LATENCY_MAX", "200ms")
	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsNonPositivePerPage(t *testing.T) {
	t.Setenv("CONSOLE_PER_PAGE", "0")
	_, err := Load()
	require.Error(t, err)
}
