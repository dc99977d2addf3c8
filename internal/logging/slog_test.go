package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func newBufLogger() (*SlogLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return NewSlogLogger(slog.New(slog.NewJSONHandler(buf, nil))), buf
}

func TestSlogLogger_InfoWritesJSON(t *testing.T) {
	log, buf := newBufLogger()
	log.Info(context.Background(), "hello", "k", "v")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	require.Equal(t, "hello", rec["msg"])
	require.Equal(t, "v", rec["k"])
	require.Equal(t, "INFO", rec["level"])
}

func TestSlogLogger_WithAddsFields(t *testing.T) {
	log, buf := newBufLogger()
	child := log.With("module", "guard")
	child.Warn(context.Background(), "slow down")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	require.Equal(t, "guard", rec["module"])
	require.Equal(t, "WARN", rec["level"])
}
