package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "info", "json")
	t.Cleanup(func() { InitWithWriter(&bytes.Buffer{}, "info", "json") })

	Debug("hidden %d", 1)
	Info("cycle %s done", "BTCUSDT")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "cycle BTCUSDT done", entry["message"])
	assert.Contains(t, entry, "time")
}

func TestInitWithWriter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "WARN", "json")
	t.Cleanup(func() { InitWithWriter(&bytes.Buffer{}, "info", "json") })

	Info("dropped")
	Warn("kept")
	Error("kept too")

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Equal(t, 2, strings.Count(out, "kept"))
}

func TestInitWithWriter_Text(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "debug", "text")
	t.Cleanup(func() { InitWithWriter(&bytes.Buffer{}, "info", "json") })

	Debug("volume ratio %.2f", 1.5)
	assert.Contains(t, buf.String(), "volume ratio 1.50")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}
