package logging

import (
	"testing"

	"github.com/example/stockdesk/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	logger, err := New(&config.LogConfig{Level: "debug", Encoding: "console", OutputPaths: []string{"stdout"}})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNewDefaults(t *testing.T) {
	logger, err := New(&config.LogConfig{})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
}

func TestNewBadLevel(t *testing.T) {
	_, err := New(&config.LogConfig{Level: "loud"})
	assert.Error(t, err)
}
