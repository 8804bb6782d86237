// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"strings"
	"sync"
	"time"
)

// DebugObserver logs nested analysis steps at debug level
type DebugObserver struct {
	*StandardObserver
	mu     sync.Mutex
	indent int
}

// NewDebugObserver creates a debug observer with step-by-step logging
func NewDebugObserver(logger Logger) *DebugObserver {
	d := &DebugObserver{
		StandardObserver: NewStandardObserver(ObservabilityDebug, logger),
	}
	d.StandardObserver.DebugObserver = d
	return d
}

// StartStep begins a processing step; the returned func ends it
func (d *DebugObserver) StartStep(component, step, target string) func(success bool, details string) {
	start := time.Now()

	d.mu.Lock()
	prefix := strings.Repeat("  ", d.indent)
	d.indent++
	d.mu.Unlock()

	d.logger.Debug(prefix+"start "+step, "component", component, "target", target)

	return func(success bool, details string) {
		d.mu.Lock()
		d.indent--
		d.mu.Unlock()

		msg := prefix + "done " + step
		if !success {
			msg = prefix + "failed " + step
		}
		d.logger.Debug(msg,
			"component", component,
			"duration_ms", time.Since(start).Milliseconds(),
			"details", details)
	}
}

// LogDetail logs a detail within the current step
func (d *DebugObserver) LogDetail(component, detail string) {
	d.logger.Debug(d.prefix()+"-> "+detail, "component", component)
}

// LogMetric logs a metric value
func (d *DebugObserver) LogMetric(component, metric string, value interface{}) {
	d.logger.Debug(d.prefix()+"metric", "component", component, metric, value)
}

func (d *DebugObserver) prefix() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return strings.Repeat("  ", d.indent)
}
