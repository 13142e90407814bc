package config

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"magis-site/internal/status"
)

func setRequired(t *testing.T) {
	t.Setenv("BACKEND_URL", "https://magis.example.com/")
	t.Setenv("BACKEND_KEY", "public-key")
	t.Setenv("ENVIRONMENT", "development")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://magis.example.com", cfg.BackendURL)
	assert.Equal(t, "public-key", cfg.BackendKey)
	assert.Equal(t, 12*time.Hour, cfg.HeartbeatInterval)
	assert.Equal(t, 6*time.Hour, cfg.HeartbeatIdleAfter)
	assert.Len(t, cfg.CSRFKey, 32)
	assert.NotNil(t, cfg.Location)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadConfig_MissingBackend(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		key     string
		missing string
	}{
		{"missing url", "", "key", "BACKEND_URL"},
		{"missing key", "https://magis.example.com", "", "BACKEND_KEY"},
		{"missing both", "", "", "BACKEND_URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("BACKEND_URL", tt.url)
			t.Setenv("BACKEND_KEY", tt.key)

			cfg, err := LoadConfig()
			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.True(t, errors.Is(err, status.ErrMissingConfig))
			assert.Contains(t, err.Error(), tt.missing)
		})
	}
}

func TestLoadConfig_CSRFKey(t *testing.T) {
	setRequired(t)

	t.Setenv("CSRF_KEY", strings.Repeat("ab", 32))
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, byte(0xab), cfg.CSRFKey[0])

	t.Setenv("CSRF_KEY", "not-hex")
	_, err = LoadConfig()
	assert.ErrorIs(t, err, status.ErrMissingConfig)

	t.Setenv("CSRF_KEY", "")
	t.Setenv("ENVIRONMENT", "production")
	_, err = LoadConfig()
	assert.ErrorIs(t, err, status.ErrMissingConfig)
}

func TestParseEmailList(t *testing.T) {
	tests := []struct {
		raw      string
		expected []string
	}{
		{"", []string{}},
		{"a@magis.org", []string{"a@magis.org"}},
		{" A@Magis.org , b@magis.org,,", []string{"a@magis.org", "b@magis.org"}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseEmailList(tt.raw))
		})
	}
}

func TestGetEnvAsDuration_FallsBackOnGarbage(t *testing.T) {
	t.Setenv("HEARTBEAT_INTERVAL", "soon")
	assert.Equal(t, 12*time.Hour, getEnvAsDuration("HEARTBEAT_INTERVAL", "12h"))
}
