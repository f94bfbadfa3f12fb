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
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel(" warning "))
	assert.Equal(t, zerolog.Disabled, ParseLevel("off"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("loud"))
}

func TestOpTagsEntries(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "debug", Output: &buf})
	t.Cleanup(func() { Configure(Config{Level: "info"}) })

	l := Op("update_page", "abc")
	l.Warn().Str("semester", "Semester 1").Msg("Failed")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "update_page", entry["op"])
	assert.Equal(t, "abc", entry["target"])
	assert.Equal(t, "Semester 1", entry["semester"])
	assert.Equal(t, "Failed", entry["message"])
}

func TestConfigureFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "error", Output: &buf})
	t.Cleanup(func() { Configure(Config{Level: "info"}) })

	Info().Msg("quiet")
	assert.Zero(t, buf.Len())
	Error().Msg("loud")
	assert.Contains(t, buf.String(), "loud")
}
