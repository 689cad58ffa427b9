package logging

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved(level zapcore.Level) (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return NewLoggerFromCore(core), logs
}

func TestLogger_FieldsReachCore(t *testing.T) {
	l, logs := newObserved(zapcore.DebugLevel)

	l.Info("prediction served",
		String("source", "estimated"),
		Int("dim", 1044),
		Float64("affinity", 6.25),
		Bool("cached", false),
		Duration("took", 3*time.Millisecond),
		Err(errors.New("boom")),
	)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "prediction served", entry.Message)
	ctx := entry.ContextMap()
	assert.Equal(t, "estimated", ctx["source"])
	assert.EqualValues(t, 1044, ctx["dim"])
	assert.Equal(t, 6.25, ctx["affinity"])
	assert.Equal(t, false, ctx["cached"])
	assert.Equal(t, "boom", ctx["error"])
}

func TestLogger_LevelFiltering(t *testing.T) {
	l, logs := newObserved(zapcore.WarnLevel)

	l.Debug("dropped")
	l.Info("dropped")
	l.Warn("kept")
	l.Error("kept")

	assert.Equal(t, 2, logs.Len())
	assert.Equal(t, 2, logs.FilterMessage("kept").Len())
}

func TestLogger_WithAndNamed(t *testing.T) {
	l, logs := newObserved(zapcore.InfoLevel)

	l.Named("prediction").With(String("request_id", "r-1")).Info("start")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "prediction", entry.LoggerName)
	assert.Equal(t, "r-1", entry.ContextMap()["request_id"])
}

func TestInput_Truncates(t *testing.T) {
	short := Input("drug", "CCO")
	assert.Equal(t, "CCO", short.Value)

	long := strings.Repeat("A", 500)
	f := Input("protein", long)
	s, ok := f.Value.(string)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(s, strings.Repeat("A", maxLoggedInput)))
	assert.Contains(t, s, "(500 chars)")
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"DEBUG":   zapcore.DebugLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNewLogger_Formats(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		l, err := NewLogger(LogConfig{Level: "info", Format: format, OutputPaths: []string{"stderr"}})
		require.NoError(t, err, format)
		require.NotNil(t, l)
	}
}

func TestNewLogger_BadOutputPath(t *testing.T) {
	_, err := NewLogger(LogConfig{OutputPaths: []string{"/nonexistent-dir/x/y.log"}})
	assert.Error(t, err)
}

func TestDefaultLogger(t *testing.T) {
	prev := Default()
	t.Cleanup(func() { SetDefault(prev) })

	SetDefault(nil)
	assert.Equal(t, prev, Default())

	l, logs := newObserved(zapcore.InfoLevel)
	SetDefault(l)
	Default().Info("hello")
	assert.Equal(t, 1, logs.Len())
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.Info("x")
	assert.NotNil(t, l.With(String("a", "b")).Named("n"))
	assert.NoError(t, l.Sync())
}
