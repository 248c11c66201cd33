package logger

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ytmarket/pkg/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.LoggingConfig
		wantErr bool
	}{
		{"info level", &config.LoggingConfig{Level: "info"}, false},
		{"debug level", &config.LoggingConfig{Level: "debug"}, false},
		{"warn alias", &config.LoggingConfig{Level: "warning"}, false},
		{"invalid level", &config.LoggingConfig{Level: "shouting"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}
}

func TestNewWithFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "scanner.log")

	logger, err := New(&config.LoggingConfig{Level: "info", File: path})
	require.NoError(t, err)

	logger.Info("written to file")
	assert.FileExists(t, path)
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"disabled", zerolog.Disabled},
	}

	for _, tt := range tests {
		level, err := parseLogLevel(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, level)
	}

	_, err := parseLogLevel("nope")
	assert.Error(t, err)
}

func TestWithFieldsDoesNotMutateParent(t *testing.T) {
	logger, err := New(&config.LoggingConfig{Level: "info"})
	require.NoError(t, err)

	child := logger.WithField("region", "US")
	grandchild := child.WithField("page", 2)

	parent, ok := logger.(*zerologLogger)
	require.True(t, ok)
	assert.Empty(t, parent.fields)

	c, ok := child.(*zerologLogger)
	require.True(t, ok)
	assert.Len(t, c.fields, 1)

	g, ok := grandchild.(*zerologLogger)
	require.True(t, ok)
	assert.Len(t, g.fields, 2)
}

func TestWithErrorNilIsNoop(t *testing.T) {
	logger, err := New(&config.LoggingConfig{Level: "info"})
	require.NoError(t, err)

	assert.Equal(t, logger, logger.WithError(nil))
}

func TestGetLoggerDefaultsWhenUninitialized(t *testing.T) {
	assert.NotNil(t, GetLogger())
}
