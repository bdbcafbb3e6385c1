package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		out = append(out, entry)
	}
	return out
}

func TestStructuredLogger_WritesJSONWithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger("climate-api", "1.2.3", InfoLevel)
	logger.SetOutput(&buf)

	ctx := WithRequestID(context.Background(), "req-42")
	logger.Info(ctx, "[TEST] hello", Fields{"dataset": "co2", "rows": 66})

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "info", e["level"])
	assert.Equal(t, "[TEST] hello", e["message"])
	assert.Equal(t, "climate-api", e["service"])
	assert.Equal(t, "1.2.3", e["version"])
	assert.Equal(t, "req-42", e["request_id"])
	assert.Equal(t, "co2", e["dataset"])
	assert.EqualValues(t, 66, e["rows"])
}

func TestStructuredLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger("svc", "v", WarnLevel)
	logger.SetOutput(&buf)

	logger.Debug(context.Background(), "debug", nil)
	logger.Info(context.Background(), "info", nil)
	assert.Empty(t, buf.String())

	logger.SetLevel(DebugLevel)
	logger.Debug(context.Background(), "debug", nil)
	assert.Len(t, decodeLines(t, &buf), 1)
}

func TestStructuredLogger_ErrorCarriesCallerAndError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger("svc", "v", InfoLevel)
	logger.SetOutput(&buf)

	logger.Error(context.Background(), "[FAIL] boom", Fields{}, errors.New("kaput"))

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "error", entries[0]["level"])
	assert.Equal(t, "kaput", entries[0]["error"])
	assert.Contains(t, entries[0]["file"], "logger_test.go")
}

func TestStructuredLogger_FatalExits(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger("svc", "v", InfoLevel)
	logger.SetOutput(&buf)

	code := -1
	logger.exit = func(c int) { code = c }

	logger.Fatal(context.Background(), "[FATAL] down", nil, errors.New("disk"))

	assert.Equal(t, 1, code)
	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "fatal", entries[0]["level"])
	assert.NotEmpty(t, entries[0]["stack_trace"])
}

func TestContextLogger_MergesFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger("svc", "v", InfoLevel)
	logger.SetOutput(&buf)

	scoped := logger.WithFields(Fields{"component": "generator", "seed": 1})
	scoped.Info(context.Background(), "generated", Fields{"seed": 7})

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "generator", entries[0]["component"])
	assert.EqualValues(t, 7, entries[0]["seed"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, WarnLevel, ParseLevel("warning"))
	assert.Equal(t, ErrorLevel, ParseLevel("error"))
	assert.Equal(t, InfoLevel, ParseLevel("nonsense"))
	assert.Equal(t, "FATAL", FatalLevel.String())
}
