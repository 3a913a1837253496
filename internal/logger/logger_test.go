package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_Modes(t *testing.T) {
	for _, mode := range []string{"dev", "prod", "PRODUCTION", ""} {
		l, err := New(mode, "info")
		require.NoError(t, err, mode)
		require.NotNil(t, l.SugaredLogger)
	}
}

func TestNew_BadLevel(t *testing.T) {
	_, err := New("dev", "loud")
	assert.Error(t, err)
}

func TestWith_AddsFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.With("job", "kt_fit").Info("stage done", "stage", "extract", "segments", 12)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "stage done", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.Equal(t, "kt_fit", fields["job"])
	assert.Equal(t, "extract", fields["stage"])
	assert.EqualValues(t, 12, fields["segments"])
}

func TestLevels(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.Debug("dropped")
	l.Info("dropped")
	l.Warn("slow fit", "iterations", 100)
	l.Error("fit failed", "error", "diverged")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
	assert.Equal(t, zap.ErrorLevel, entries[1].Level)
	assert.Equal(t, "diverged", entries[1].ContextMap()["error"])
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Info("ignored", "k", 1)
	l.Sync()
}
