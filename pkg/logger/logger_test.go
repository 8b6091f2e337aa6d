package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("WARN"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel(""))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("loud"))
}

func TestConfigure(t *testing.T) {
	cfg := configure(zapcore.WarnLevel)
	assert.Equal(t, "console", cfg.Encoding)
	assert.Equal(t, "timestamp", cfg.EncoderConfig.TimeKey)
	assert.False(t, cfg.Level.Enabled(zapcore.InfoLevel))
	assert.True(t, cfg.Level.Enabled(zapcore.ErrorLevel))
}

func TestInit_Once(t *testing.T) {
	require.NoError(t, Init(zapcore.InfoLevel, zap.String("service", "moxc-web")))
	first := Log
	require.NotNil(t, first)

	require.NoError(t, Init(zapcore.DebugLevel))
	assert.Same(t, first, Log)
}
