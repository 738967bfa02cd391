package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel(" WARN "))
	assert.Equal(t, zerolog.TraceLevel, ParseLevel("trace"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("loud"))
}

func TestLevelFiltersEvents(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Config{Level: "warn"})

	logger.Info().Msg("hidden")
	logger.Warn().Str("k", "v").Msg("shown")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var event map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &event))
	assert.Equal(t, "shown", event["message"])
	assert.Equal(t, "v", event["k"])
	assert.Contains(t, event, "time")
}

func TestCallerHook(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Config{Level: "info", Caller: true})
	logger.Info().Msg("where")
	assert.Contains(t, buf.String(), `"caller":`)
}

func TestPrettyOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Config{Level: "info", Pretty: true})
	logger.Info().Str("k", "v").Msg("pretty")

	out := buf.String()
	assert.Contains(t, out, "pretty")
	assert.Contains(t, out, "k=v")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}
