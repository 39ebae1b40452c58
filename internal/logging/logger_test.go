package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"", zerolog.InfoLevel},
		{"debug", zerolog.DebugLevel},
		{" WARN ", zerolog.WarnLevel},
		{"nonsense", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), tt.in)
	}
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, ParseFormat("JSON"))
	assert.Equal(t, FormatConsole, ParseFormat(""))
	assert.Equal(t, FormatConsole, ParseFormat("pretty"))
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: zerolog.WarnLevel, Format: FormatJSON, Output: &buf})

	log.Info().Msg("dropped")
	log.Warn().Str("record", "acme").Msg("skipped")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "acme", line["record"])
	assert.Equal(t, "skipped", line["message"])
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Output: &buf, NoColor: true})

	log.Info().Msg("hello")
	assert.Contains(t, buf.String(), "INF")
	assert.Contains(t, buf.String(), "hello")
}
