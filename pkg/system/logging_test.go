package system

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewTestLogger(t *testing.T) {
	logger := NewTestLogger(t)
	require.NotNil(t, logger)
	assert.True(t, logger.Desugar().Core().Enabled(zapcore.DebugLevel))

	logger.Info("test message")
	logger.Infow("test message with fields", "key", "value")
}

func TestNewLogger(t *testing.T) {
	t.Run("quiet by default", func(t *testing.T) {
		logger, err := NewLogger(LogOptions{})
		require.NoError(t, err)
		assert.False(t, logger.Desugar().Core().Enabled(zapcore.DebugLevel), "debug should be disabled")
		assert.True(t, logger.Desugar().Core().Enabled(zapcore.WarnLevel), "warn should be enabled")
	})

	t.Run("verbose enables debug", func(t *testing.T) {
		logger, err := NewLogger(LogOptions{Verbose: true})
		require.NoError(t, err)
		assert.True(t, logger.Desugar().Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("file sink receives json lines", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "ghc.log")
		logger, err := NewLogger(LogOptions{File: path})
		require.NoError(t, err)

		logger.Debugw("written to file only", "attempt", "a1")
		_ = logger.Sync()

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, strings.Contains(string(content), `"attempt":"a1"`), string(content))
	})
}

func TestNewNopLogger(t *testing.T) {
	logger := NewNopLogger()
	require.NotNil(t, logger)
	logger.Errorw("discarded", "key", "value")
}
