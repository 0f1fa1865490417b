package logging_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/platemap/pkg/logging"
)

func TestDefaultLogger(t *testing.T) {
	original := *logging.Default()
	t.Cleanup(func() { logging.SetDefault(original) })

	buf := &bytes.Buffer{}
	logging.SetDefault(zerolog.New(buf).Level(zerolog.DebugLevel))

	logging.Debug().Msg("debug message")
	logging.Info().Msg("info message")
	logging.Err(assert.AnError).Msg("error message")

	output := buf.String()
	assert.Contains(t, output, "info message")
	assert.Contains(t, output, "error message")
}

func TestContextLogger(t *testing.T) {
	tl := logging.NewTestLogger(t)

	ctx := logging.WithLogger(context.Background(), tl.Logger)
	ctx = logging.WithPlate(ctx, "ABC123")
	ctx = logging.WithSchema(ctx, "primary")
	ctx = logging.WithAgencies(ctx, []string{"DOT", "CHP"})
	ctx = logging.WithRequestID(ctx, "req-1")
	ctx = logging.WithOperation(ctx, "upload")

	logging.FromContext(ctx).Info().Msg("query dispatched")

	tl.AssertContains(t, `"plate":"ABC123"`)
	tl.AssertContains(t, `"schema":"primary"`)
	tl.AssertContains(t, `"agencies":"DOT,CHP"`)
	tl.AssertContains(t, `"request_id":"req-1"`)
	tl.AssertContains(t, `"operation":"upload"`)
	tl.AssertContains(t, "query dispatched")
	assert.Equal(t, "req-1", logging.RequestID(ctx))
}

func TestFromContextDefaults(t *testing.T) {
	//nolint:staticcheck // nil context is the case under test
	assert.Same(t, logging.Default(), logging.FromContext(nil))
	assert.Same(t, logging.Default(), logging.Ctx(context.Background()))
	assert.Empty(t, logging.RequestID(context.Background()))
}

func TestWithFields(t *testing.T) {
	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)
	ctx = logging.WithFields(ctx, map[string]any{
		"rows":  3,
		"valid": true,
	})
	logging.Ctx(ctx).Info().Msg("normalized")

	tl.AssertContains(t, `"rows":3`)
	tl.AssertContains(t, `"valid":true`)
}

func TestNewLoggerFromConfig(t *testing.T) {
	originalLevel := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(originalLevel) })

	path := filepath.Join(t.TempDir(), "platemap.log")
	logger := logging.NewLoggerFromConfig(&logging.Config{
		Level:  "debug",
		Format: "json",
		Output: path,
		Fields: map[string]any{"service": "platemap"},
	})
	logger.Debug().Msg("file message")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "file message")
	assert.Contains(t, string(content), `"service":"platemap"`)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"warning", zerolog.WarnLevel},
		{"off", zerolog.Disabled},
		{"", zerolog.InfoLevel},
		{"nonsense", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, logging.ParseLevel(tt.in))
		})
	}
}

func TestTestLogger(t *testing.T) {
	tl := logging.NewTestLogger(t)

	tl.Logger.Info().Msg("message 1")
	tl.Logger.Warn().Msg("message 2")

	tl.AssertContains(t, "message 1")
	tl.AssertNotContains(t, "message 3")
	assert.Equal(t, 2, tl.Count())

	tl.Clear()
	assert.Equal(t, 0, tl.Count())
}
