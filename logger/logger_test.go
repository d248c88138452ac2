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
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("info"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("verbose"))
}

func TestNewWithWriter_JSON(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer
	log := NewWithWriter(Config{Level: "info"}, &buf)
	log.Debug().Msg("hidden")
	log.Info().Str("team", "alpha").Msg("trade accepted")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "trade accepted", entry["message"])
	assert.Equal(t, "alpha", entry["team"])
	assert.Contains(t, entry, "time")
	assert.Contains(t, entry, "caller")
}

func TestNewWithWriter_Pretty(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer
	log := NewWithWriter(Config{Level: "debug", Pretty: true}, &buf)
	log.Debug().Msg("tick")
	assert.Contains(t, buf.String(), "tick")
}
