package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLoggerJSON(t *testing.T) {
	buf := new(bytes.Buffer)
	log := setupLogger(buf, false)
	log.Debug("hidden")
	log.With("op", "test").Info("visible", "movie_id", 27205)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "visible", record["msg"])
	assert.Equal(t, "test", record["op"])
	assert.EqualValues(t, 27205, record["movie_id"])
}

func TestSetupLoggerPretty(t *testing.T) {
	buf := new(bytes.Buffer)
	log := setupLogger(buf, true)
	log.With("op", "pretty").Debug("shown")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), `"op": "pretty"`)
}

func TestLogAdapter(t *testing.T) {
	buf := new(bytes.Buffer)
	std := LogAdapter(setupLogger(buf, false))
	std.Print("from std logger")
	assert.Contains(t, buf.String(), "from std logger")
}
