package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLIsUsableBeforeInit(t *testing.T) {
	Set(nil)
	assert.NotPanics(t, func() { L().Warn("nothing listening") })
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	_, err := Init("development", "chatty")
	require.Error(t, err)
}

func TestInitProductionLevel(t *testing.T) {
	l, err := Init("production", "warn")
	require.NoError(t, err)
	t.Cleanup(func() { Set(nil) })

	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
	assert.Same(t, l, L())
}

func TestSetReplacesGlobal(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	Set(zap.New(core))
	t.Cleanup(func() { Set(nil) })

	L().Warn("remote search failed", zap.String("term", "egg"))
	L().Info("opened db")

	require.Equal(t, 2, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "remote search failed", entry.Message)
	assert.Equal(t, "egg", entry.ContextMap()["term"])
}
