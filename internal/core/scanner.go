// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"context"
	"fmt"
	"os"
	"strings"

	"lease-scan/internal/config"
	"lease-scan/internal/detector"
	"lease-scan/internal/observability"
	"lease-scan/internal/preprocessors"
	"lease-scan/internal/rules"
	"lease-scan/internal/suppressions"
)

// ScanConfig holds configuration for one file scan
type ScanConfig struct {
	FilePath     string
	Jurisdiction string // empty or "auto" infers from the text
	Debug        bool
	IncludeText  bool
	Config       *config.Config
	Profile      *config.Profile
	Library      *rules.Library
	Observer     *observability.StandardObserver
	// SuppressionManager, when non-nil, moves accepted flags into
	// AnalysisResult.Suppressed
	SuppressionManager *suppressions.SuppressionManager
}

// ScanResult holds the analysis of one file plus what was extracted from it
type ScanResult struct {
	Result  *detector.AnalysisResult
	Content *preprocessors.ProcessedContent
}

// ScanFile extracts a lease's text from a file on disk and analyzes it. The
// web API does its own upload extraction so it can map errors to statuses.
func ScanFile(ctx context.Context, scanConfig ScanConfig) (*ScanResult, error) {
	observer := scanConfig.Observer
	if observer == nil {
		observer = BuildObserver(scanConfig.Config, scanConfig.Debug, os.Stderr)
	}

	manager := preprocessors.NewDefaultManager(observer)
	content, err := manager.ProcessFile(scanConfig.FilePath)
	if err != nil {
		return nil, fmt.Errorf("text extraction failed: %w", err)
	}

	analyzer := BuildAnalyzer(scanConfig.Config, scanConfig.Profile, scanConfig.Library, observer, scanConfig.SuppressionManager)
	analyzer.opts.IncludeText = scanConfig.IncludeText

	result, err := analyzer.Analyze(ctx, Input{
		DocumentText: content.Text,
		Jurisdiction: scanConfig.Jurisdiction,
		Source:       scanConfig.FilePath,
	})
	if err != nil {
		return nil, err
	}

	return &ScanResult{Result: result, Content: content}, nil
}

// ParseSeverityLevels converts a comma-separated severity string into a map.
// "all" or empty string enables every level.
func ParseSeverityLevels(levels string) map[string]bool {
	result := map[string]bool{
		string(detector.SeverityHigh):    false,
		string(detector.SeverityWarning): false,
		string(detector.SeverityInfo):    false,
	}

	if levels == "" || strings.EqualFold(strings.TrimSpace(levels), "all") {
		for key := range result {
			result[key] = true
		}
		return result
	}

	for _, level := range strings.Split(levels, ",") {
		if sev, ok := detector.ParseSeverity(level); ok {
			result[string(sev)] = true
		}
	}
	return result
}
