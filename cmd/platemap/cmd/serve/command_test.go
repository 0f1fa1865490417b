package serve

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/platemap/cmd/application"
	"github.com/agentstation/platemap/internal/server"
)

func TestParseConfigDefaults(t *testing.T) {
	t.Setenv("HTTP_HOST", "")
	t.Setenv("HTTP_PORT", "")

	cmd := NewCommand(&application.Mock{})
	require.NoError(t, cmd.ParseFlags(nil))

	cfg, err := parseConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, server.DefaultConfig(), cfg)
}

func TestParseConfigFlagsAndEnv(t *testing.T) {
	t.Setenv("HTTP_HOST", "0.0.0.0")
	t.Setenv("HTTP_PORT", "9000")

	cmd := NewCommand(&application.Mock{})
	require.NoError(t, cmd.ParseFlags([]string{
		"--port", "3000",
		"--prefix", "/v2",
		"--cors-origins", "https://a.example.com,https://b.example.com",
		"--max-upload", "1024",
		"--shutdown-timeout", "5s",
		"--metrics=false",
	}))

	cfg, err := parseConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "/v2", cfg.PathPrefix)
	assert.True(t, cfg.CORSEnabled)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
	assert.Equal(t, int64(1024), cfg.MaxUploadBytes)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.MetricsEnabled)
}

func TestParseConfigRejectsBadInput(t *testing.T) {
	t.Setenv("HTTP_HOST", "")

	t.Setenv("HTTP_PORT", "70000")
	cmd := NewCommand(&application.Mock{})
	require.NoError(t, cmd.ParseFlags(nil))
	_, err := parseConfig(cmd)
	assert.ErrorContains(t, err, "port out of range")

	t.Setenv("HTTP_PORT", "")
	cmd = NewCommand(&application.Mock{})
	require.NoError(t, cmd.ParseFlags([]string{"--read-timeout", "-1s"}))
	_, err = parseConfig(cmd)
	assert.ErrorContains(t, err, "--read-timeout")
}

func TestParsePort(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"8080", 8080, false},
		{"0", 0, true},
		{"http", 0, true},
	}
	for _, tt := range tests {
		got, err := parsePort(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		assert.Equal(t, tt.want, got)
	}
}

func TestServeFailsWithoutCatalog(t *testing.T) {
	t.Setenv("HTTP_PORT", "")
	t.Setenv("HTTP_HOST", "")

	cmd := NewCommand(&application.Mock{})
	cmd.SetArgs([]string{"--port", "0"})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating server")
}
