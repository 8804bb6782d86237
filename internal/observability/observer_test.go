// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonLogger(buf *bytes.Buffer, level LogLevel) Logger {
	return NewLogger(&LoggerConfig{Level: level, Output: buf, JSON: true})
}

func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &entry))
	return entry
}

func TestStartTimingMetricsLevel(t *testing.T) {
	var buf bytes.Buffer
	obs := NewStandardObserver(ObservabilityMetrics, jsonLogger(&buf, InfoLevel))

	done := obs.StartTiming("analyzer", "analyze", "lease.pdf")
	done(true, map[string]interface{}{"flags": 2})

	entry := lastEntry(t, &buf)
	assert.Equal(t, "operation", entry["msg"])
	assert.Equal(t, "analyzer", entry["component"])
	assert.Equal(t, "analyze", entry["operation"])
	assert.Equal(t, "lease.pdf", entry["target"])
	assert.Equal(t, true, entry["success"])
	assert.NotEmpty(t, entry["op_id"])
	assert.NotContains(t, entry, "flags", "metadata is only logged at debug level")
}

func TestStartTimingDebugLevelIncludesMetadata(t *testing.T) {
	var buf bytes.Buffer
	obs := NewStandardObserver(ObservabilityDebug, jsonLogger(&buf, DebugLevel))

	obs.StartTiming("analyzer", "analyze", "")(false, map[string]interface{}{"flags": 2})

	entry := lastEntry(t, &buf)
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, float64(2), entry["flags"])
	assert.Equal(t, false, entry["success"])
	assert.NotContains(t, entry, "target")
}

func TestFailedOperationLogsWarning(t *testing.T) {
	var buf bytes.Buffer
	obs := NewStandardObserver(ObservabilityMetrics, jsonLogger(&buf, InfoLevel))

	obs.LogOperation(StandardObservabilityData{Component: "web", Operation: "extract", Error: "boom"})

	entry := lastEntry(t, &buf)
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "boom", entry["error"])
}

func TestStartTimingLiftsErrorMetadata(t *testing.T) {
	var buf bytes.Buffer
	obs := NewStandardObserver(ObservabilityMetrics, jsonLogger(&buf, InfoLevel))

	metadata := map[string]interface{}{"error": "context canceled", "chunks": 4}
	obs.StartTiming("parallel_processor", "score_chunks", "4 chunks")(false, metadata)

	entry := lastEntry(t, &buf)
	assert.Equal(t, "operation failed", entry["msg"])
	assert.Equal(t, "context canceled", entry["error"])
	assert.NotContains(t, entry, "chunks")
	assert.Contains(t, metadata, "error", "caller map is left alone")

	buf.Reset()
	debugObs := NewStandardObserver(ObservabilityDebug, jsonLogger(&buf, DebugLevel))
	debugObs.StartTiming("analyzer", "analyze", "")(false, map[string]interface{}{"error": errors.New("boom"), "chunks": 4})

	entry = lastEntry(t, &buf)
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, float64(4), entry["chunks"])
}

func TestSplitError(t *testing.T) {
	msg, rest := splitError(nil)
	assert.Empty(t, msg)
	assert.Nil(t, rest)

	msg, rest = splitError(map[string]interface{}{"error": nil, "k": 1})
	assert.Empty(t, msg)
	assert.Equal(t, map[string]interface{}{"k": 1}, rest)

	msg, _ = splitError(map[string]interface{}{"error": 42})
	assert.Equal(t, "42", msg)
}

func TestObservabilityOff(t *testing.T) {
	var buf bytes.Buffer
	obs := NewStandardObserver(ObservabilityOff, jsonLogger(&buf, DebugLevel))

	obs.StartTiming("analyzer", "analyze", "x")(true, nil)
	assert.Empty(t, buf.String())

	var nilObs *StandardObserver
	assert.NotPanics(t, func() { nilObs.LogOperation(StandardObservabilityData{}) })
}

func TestDebugObserverSteps(t *testing.T) {
	var buf bytes.Buffer
	d := NewDebugObserver(jsonLogger(&buf, DebugLevel))

	end := d.StartStep("analyzer", "chunk", "doc")
	d.LogDetail("analyzer", "12 chunks")
	d.LogMetric("analyzer", "chunks", 12)
	end(true, "ok")

	out := buf.String()
	assert.Contains(t, out, "start chunk")
	assert.Contains(t, out, "12 chunks")
	assert.Contains(t, out, "done chunk")
	assert.Same(t, d, d.StandardObserver.DebugObserver)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLogLevel("DEBUG"))
	assert.Equal(t, WarnLevel, ParseLogLevel(" warn "))
	assert.Equal(t, InfoLevel, ParseLogLevel("verbose"))
	assert.Equal(t, InfoLevel, ParseLogLevel(""))
}
