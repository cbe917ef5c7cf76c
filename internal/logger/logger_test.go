package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_JSONWritesFields(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Level: "debug", Format: "json", Output: &buf})
	require.NoError(t, err)

	l.Named("arena").Info(context.Background(), "winner decided",
		String("winner", "Muhammad Ali"), Float64("score", 2527.8), Error(errors.New("boom")))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "winner decided", line["msg"])
	require.Equal(t, "arena", line["component"])
	require.Equal(t, "Muhammad Ali", line["winner"])
	require.Equal(t, 2527.8, line["score"])
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Level: "warn", Output: &buf})
	require.NoError(t, err)

	l.Info(context.Background(), "hidden")
	require.Zero(t, buf.Len())

	l.Warn(context.Background(), "shown")
	require.Contains(t, buf.String(), "shown")
}

func TestNew_RejectsUnknownSettings(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	require.Error(t, err)

	_, err = New(Options{Format: "xml"})
	require.Error(t, err)
}
