package zaplog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ochairo/depbundle/internal/domain/interfaces"
)

func TestLogger_LevelsAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	var logger interfaces.Logger = New(zap.New(core))

	logger.Debug("debug", interfaces.F("n", 3))
	logger.Info("info", interfaces.F("path", "/opt/x/libfoo.dylib"))
	logger.Warn("warn", interfaces.Err(errors.New("not a Mach-O file")))
	logger.Error("error")

	entries := logs.All()
	require.Len(t, entries, 4)

	levels := []zapcore.Level{zapcore.DebugLevel, zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel}
	for i, e := range entries {
		assert.Equal(t, levels[i], e.Level)
	}

	assert.Equal(t, int64(3), entries[0].ContextMap()["n"])
	assert.Equal(t, "/opt/x/libfoo.dylib", entries[1].ContextMap()["path"])
	assert.Equal(t, "not a Mach-O file", entries[2].ContextMap()["error"])
	assert.Empty(t, entries[3].Context)
}

func TestBuild(t *testing.T) {
	for _, format := range []string{"", FormatConsole, FormatJSON} {
		l, err := Build(format, true)
		require.NoError(t, err, "format %q", format)
		assert.True(t, l.Zap().Core().Enabled(zapcore.DebugLevel))
	}

	l, err := Build(FormatJSON, false)
	require.NoError(t, err)
	assert.False(t, l.Zap().Core().Enabled(zapcore.DebugLevel))

	_, err = Build("xml", false)
	assert.Error(t, err)
}

func TestNew_NilUsesNop(t *testing.T) {
	l := New(nil)
	assert.NotPanics(t, func() { l.Info("dropped") })
}
