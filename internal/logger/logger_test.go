package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewAppliesLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"unknown": zapcore.InfoLevel,
	}
	for input, want := range cases {
		l, err := New(input, "json")
		require.NoError(t, err)
		require.True(t, l.Core().Enabled(want), "level %s", input)
		if want > zapcore.DebugLevel {
			require.False(t, l.Core().Enabled(want-1), "level %s", input)
		}
	}
}

func TestNewConsoleFormat(t *testing.T) {
	l, err := New("info", "console")
	require.NoError(t, err)
	require.NotNil(t, l)
}
