package logging_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/catalogsync/pkg/logging"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"":        zerolog.InfoLevel,
		"debug":   zerolog.DebugLevel,
		"WARN":    zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"off":     zerolog.Disabled,
		"bogus":   zerolog.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, logging.ParseLevel(in), in)
	}
}

func TestNewLoggerFromConfigWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")

	logger := logging.NewLoggerFromConfig(&logging.Config{
		Level:  "warn",
		Format: "json",
		Output: path,
	})
	logger.Info().Msg("hidden message")
	logger.Warn().Str("entry", "e1").Msg("visible message")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "hidden message")
	assert.Contains(t, string(content), "visible message")
	assert.Contains(t, string(content), `"entry":"e1"`)
}

func TestContextLogger(t *testing.T) {
	tl := logging.NewTestLogger(t)

	ctx := tl.Context(context.Background())
	ctx = logging.WithFields(ctx, "system", "cloud_storage", "entry_group", "g")
	ctx = logging.WithEntry(ctx, "report_1")

	logging.FromContext(ctx).Info().Msg("Entry created")

	tl.AssertContains(t, `"system":"cloud_storage"`)
	tl.AssertContains(t, `"entry_group":"g"`)
	tl.AssertContains(t, `"entry":"report_1"`)
	assert.Len(t, tl.Lines(), 1)
}

func TestFromContextDefaults(t *testing.T) {
	//nolint:staticcheck // nil context is part of the contract
	assert.Same(t, logging.Default(), logging.FromContext(nil))
	assert.Same(t, logging.Default(), logging.FromContext(context.Background()))
}
