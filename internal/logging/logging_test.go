package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logsearch-backend/config"
)

func TestSetup_Levels(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	tests := []struct {
		level    string
		expected zerolog.Level
	}{
		{level: "debug", expected: zerolog.DebugLevel},
		{level: "WARN", expected: zerolog.WarnLevel},
		{level: "", expected: zerolog.InfoLevel},
		{level: "verbose", expected: zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			closer := Setup(config.LoggingConfig{Level: tt.level, Format: "json"})
			defer closer.Close()
			assert.Equal(t, tt.expected, zerolog.GlobalLevel())
		})
	}
}

func TestSetup_WritesRotatingFile(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)
	path := filepath.Join(t.TempDir(), "logsearch.log")

	closer := Setup(config.LoggingConfig{Level: "info", Format: "json", File: path, MaxSizeMB: 1})
	log.Info().Str("component", "test").Msg("hello file")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"hello file"`)
	assert.Contains(t, string(data), `"component":"test"`)
}
