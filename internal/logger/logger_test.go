package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "json")
	log.Info().Str("quiz_id", "q1").Msg("graded")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "graded", entry["message"])
	assert.Equal(t, "q1", entry["quiz_id"])
	assert.Equal(t, "lms-quiz", entry["service"])
	assert.Contains(t, entry, "time")
}

func TestNewPretty(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "pretty")
	log.Info().Msg("graded")

	assert.Contains(t, buf.String(), "graded")
	assert.NotContains(t, buf.String(), `"message"`)
}
