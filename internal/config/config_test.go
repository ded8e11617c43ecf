package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	var c Config
	require.NoError(t, c.Load([]string{}))
	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, "http://judge0-server:2358", c.Judge0URL)
	assert.Equal(t, time.Second, c.PollInterval)
	assert.Equal(t, 2*time.Minute, c.MaxWait)
	assert.Equal(t, 0, c.TransportRetries)
	assert.Equal(t, 5, c.WorkerConcurrency)
	assert.Equal(t, 3, c.MaxAttempts)
	assert.Equal(t, time.Hour, c.StatusTTL)
}

func TestLoadEnvAndFlags(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("RUNBOX_REDIS_ADDR", "redis:6380")
	t.Setenv("RUNBOX_POLL_INTERVAL", "250ms")

	var c Config
	require.NoError(t, c.Load([]string{"-max-wait", "10s", "-mode", "api"}))
	assert.Equal(t, "redis:6380", c.RedisAddr)
	assert.Equal(t, 250*time.Millisecond, c.PollInterval)
	assert.Equal(t, 10*time.Second, c.MaxWait)
	assert.Equal(t, ModeAPI, c.Mode)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Judge0URL:         "http://judge0",
			PollInterval:      time.Second,
			MaxWait:           time.Minute,
			WorkerConcurrency: 1,
			MaxAttempts:       1,
		}
	}
	tests := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{"valid", func(*Config) {}, ""},
		{"unknown mode", func(c *Config) { c.Mode = "both" }, "unknown mode"},
		{"missing url", func(c *Config) { c.Judge0URL = "" }, "judge0 url"},
		{"zero interval", func(c *Config) { c.PollInterval = 0 }, "poll interval"},
		{"wait below interval", func(c *Config) { c.MaxWait = time.Millisecond }, "max wait"},
		{"worker without db", func(c *Config) { c.Mode = ModeWorker }, "database url"},
		{"negative retries", func(c *Config) { c.TransportRetries = -1 }, "retries"},
		{"no workers", func(c *Config) { c.WorkerConcurrency = 0 }, "concurrency"},
		{"no attempts", func(c *Config) { c.MaxAttempts = 0 }, "attempts"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.modify(&c)
			err := c.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}
