package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_JSON(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })

	var buf bytes.Buffer
	log, err := NewWithWriter(&buf, "DEBUG", "json")
	require.NoError(t, err)

	log.Debug().Str("session_id", "abc").Msg("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "debug", line["level"])
	assert.Equal(t, "abc", line["session_id"])
	assert.Equal(t, "hello", line["message"])
	assert.Equal(t, zerolog.DebugLevel, GetLogger().GetLevel())
}

func TestNewWithWriter_Errors(t *testing.T) {
	_, err := NewWithWriter(&bytes.Buffer{}, "loud", "json")
	assert.Error(t, err)

	_, err = NewWithWriter(&bytes.Buffer{}, "info", "xml")
	assert.EqualError(t, err, "unsupported log format")
}
