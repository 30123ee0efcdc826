package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		entry := map[string]any{}
		require.NoError(t, json.Unmarshal(line, &entry))
		out = append(out, entry)
	}
	return out
}

func TestLoggerWritesStructuredFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf, "debug")

	log.With("component", "datastore").
		WithGroup("op").
		Debug("applied", "key", "a", "ok", true, "took", 2*time.Millisecond, "error", errors.New("boom"))

	entries := decodeLines(t, buf)
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "debug", e["level"])
	assert.Equal(t, "applied", e["message"])
	assert.Equal(t, "datastore", e["component"])
	assert.Equal(t, "a", e["op.key"])
	assert.Equal(t, true, e["op.ok"])
	assert.Equal(t, "boom", e["op.error"])
	assert.Contains(t, e, "time")
}

func TestLoggerFiltersByLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf, "warn")

	log.Info("hidden")
	log.Warn("shown", slog.Group("tx", "id", "t1"))

	entries := decodeLines(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "warn", entries[0]["level"])
	assert.Equal(t, "t1", entries[0]["tx.id"])
	assert.False(t, log.Enabled(t.Context(), slog.LevelInfo))
}

func TestUnknownLevelFallsBackToInfo(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, getSLogLevel("verbose"))
	assert.Equal(t, slog.LevelDebug, getSLogLevel("DEBUG"))
}

func TestGroupPrefixAppliesOnlyToLaterAttrs(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf, "info")

	log.With("before", 1).WithGroup("g").With("inside", 2).WithGroup("h").Info("m", "own", 3)

	entries := decodeLines(t, buf)
	require.Len(t, entries, 1)
	e := entries[0]
	assert.EqualValues(t, 1, e["before"])
	assert.EqualValues(t, 2, e["g.inside"])
	assert.EqualValues(t, 3, e["g.h.own"])
	assert.NotContains(t, e, "g.before")
	assert.NotContains(t, e, "g.g.inside")
}
