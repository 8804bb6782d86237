// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"io"

	"lease-scan/internal/config"
	"lease-scan/internal/observability"
	"lease-scan/internal/rules"
	"lease-scan/internal/suppressions"
)

// OptionsFromConfig maps the analysis section of a config (after profile
// overrides) onto analyzer options
func OptionsFromConfig(analysis config.Analysis) Options {
	opts := DefaultOptions()
	opts.MinScore = analysis.MinScore
	opts.ChunkSize = analysis.ChunkSize
	opts.ChunkOverlap = analysis.ChunkOverlap
	opts.Workers = analysis.Workers
	opts.PatternFallback = analysis.PatternFallback
	return opts
}

// BuildObserver constructs the observer shared by the CLI and the web
// server. debug switches on step-level output.
func BuildObserver(cfg *config.Config, debug bool, out io.Writer) *observability.StandardObserver {
	logCfg := observability.DefaultLoggerConfig()
	if out != nil {
		logCfg.Output = out
	}
	if cfg != nil {
		logCfg.JSON = cfg.Logging.JSON
		logCfg.Level = observability.ParseLogLevel(cfg.Logging.Level)
	}
	if debug {
		logCfg.Level = observability.DebugLevel
		return observability.NewDebugObserver(observability.NewLogger(logCfg)).StandardObserver
	}
	return observability.NewStandardObserver(observability.ObservabilityMetrics, observability.NewLogger(logCfg))
}

// BuildAnalyzer wires an analyzer from config and an optional profile. A nil
// library uses the embedded rules; a nil manager disables suppressions.
func BuildAnalyzer(cfg *config.Config, profile *config.Profile, library *rules.Library,
	observer *observability.StandardObserver, manager *suppressions.SuppressionManager) *Analyzer {
	if cfg == nil {
		cfg = config.Default()
	}
	if library == nil {
		library = rules.MustDefault()
	}

	options := []Option{}
	if observer != nil {
		options = append(options, WithObserver(observer))
	}
	if manager != nil {
		options = append(options, WithSuppressions(manager))
	}
	return NewAnalyzer(library, OptionsFromConfig(cfg.EffectiveAnalysis(profile)), options...)
}
