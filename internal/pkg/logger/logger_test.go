package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	for _, mode := range []string{"dev", "PROD", "production", ""} {
		l, err := New(mode)
		require.NoError(t, err, mode)
		assert.NotNil(t, l.SugaredLogger)
	}
}

func TestLevelsAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := (&Logger{SugaredLogger: zap.New(core).Sugar()}).With("session", "s1")

	l.Debug("answer recorded", "index", 2)
	l.Warn("quiz advisory", "code", "too_many")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, map[string]interface{}{"session": "s1", "index": int64(2)}, entries[0].ContextMap())
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "too_many", entries[1].ContextMap()["code"])
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() {
		l := Nop()
		l.Info("ignored", "k", "v")
		l.Sync()
	})
}
