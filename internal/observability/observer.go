// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// StandardObserver reports timed operations through a Logger
type StandardObserver struct {
	level         ObservabilityLevel
	logger        Logger
	DebugObserver *DebugObserver // set when running with --debug
}

type ObservabilityLevel int

const (
	ObservabilityOff     ObservabilityLevel = 0
	ObservabilityMetrics ObservabilityLevel = 1
	ObservabilityDebug   ObservabilityLevel = 2
)

// NewStandardObserver creates an observer; a nil logger disables output
func NewStandardObserver(level ObservabilityLevel, logger Logger) *StandardObserver {
	if logger == nil {
		logger = NopLogger()
	}
	return &StandardObserver{
		level:  level,
		logger: logger,
	}
}

// Logger returns the underlying logger
func (o *StandardObserver) Logger() Logger {
	return o.logger
}

// StartTiming returns a function to complete timing
func (o *StandardObserver) StartTiming(component, operation, target string) func(success bool, metadata map[string]interface{}) {
	start := time.Now()

	return func(success bool, metadata map[string]interface{}) {
		data := StandardObservabilityData{
			Component:  component,
			Operation:  operation,
			Target:     target,
			DurationMs: time.Since(start).Milliseconds(),
			Success:    success,
		}
		data.Error, data.Metadata = splitError(metadata)
		o.LogOperation(data)
	}
}

// splitError lifts metadata["error"] out so failures carry their cause at
// every level. The caller's map is not modified.
func splitError(metadata map[string]interface{}) (string, map[string]interface{}) {
	raw, ok := metadata["error"]
	if !ok {
		return "", metadata
	}
	rest := make(map[string]interface{}, len(metadata)-1)
	for k, v := range metadata {
		if k != "error" {
			rest[k] = v
		}
	}
	switch e := raw.(type) {
	case nil:
		return "", rest
	case error:
		return e.Error(), rest
	case string:
		return e, rest
	default:
		return fmt.Sprint(e), rest
	}
}

// LogOperation logs operation data. Metrics level logs at info, debug level
// additionally includes metadata.
func (o *StandardObserver) LogOperation(data StandardObservabilityData) {
	if o == nil || o.level == ObservabilityOff {
		return
	}
	if data.OperationID == "" {
		data.OperationID = uuid.NewString()
	}

	keyvals := []any{
		"component", data.Component,
		"operation", data.Operation,
		"op_id", data.OperationID,
		"success", data.Success,
		"duration_ms", data.DurationMs,
	}
	if data.Target != "" {
		keyvals = append(keyvals, "target", data.Target)
	}
	if data.Error != "" {
		keyvals = append(keyvals, "error", data.Error)
	}

	if o.level == ObservabilityDebug {
		keys := make([]string, 0, len(data.Metadata))
		for k := range data.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			keyvals = append(keyvals, k, data.Metadata[k])
		}
		o.logger.Debug("operation", keyvals...)
		return
	}

	if data.Success {
		o.logger.Info("operation", keyvals...)
	} else {
		o.logger.Warn("operation failed", keyvals...)
	}
}

// StandardObservabilityData for all components
type StandardObservabilityData struct {
	Component   string                 `json:"component"`
	Operation   string                 `json:"operation"`
	OperationID string                 `json:"operation_id"`
	Target      string                 `json:"target,omitempty"`
	DurationMs  int64                  `json:"duration_ms,omitempty"`
	Success     bool                   `json:"success"`
	Error       string                 `json:"error,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}
