// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package csv

import (
	"encoding/csv"
	"fmt"
	"strings"

	"lease-scan/internal/detector"
	"lease-scan/internal/formatters"
	"lease-scan/internal/formatters/shared"
)

// Formatter implements CSV output formatting
type Formatter struct{}

// NewFormatter creates a new CSV formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "csv"
}

func (f *Formatter) Description() string {
	return "Comma-separated values for spreadsheet import"
}

func (f *Formatter) FileExtension() string {
	return ".csv"
}

// Format writes one row per flag, then one per suppressed flag
func (f *Formatter) Format(result *detector.AnalysisResult, options formatters.FormatterOptions) (string, error) {
	out := shared.PrepareResult(result, options)

	headers := []string{"Type", "Severity", "Jurisdiction", "Reference", "Excerpt"}
	if options.Verbose {
		headers = append(headers, "Explanation")
	}
	headers = append(headers, "Suppressed By")

	var buf strings.Builder
	w := csv.NewWriter(&buf)
	if err := w.Write(headers); err != nil {
		return "", fmt.Errorf("error writing CSV header: %w", err)
	}

	for _, flag := range out.Flags {
		if err := w.Write(f.row(flag, "", options)); err != nil {
			return "", fmt.Errorf("error writing CSV row: %w", err)
		}
	}
	for _, s := range out.Suppressed {
		if err := w.Write(f.row(s.Flag, s.SuppressedBy, options)); err != nil {
			return "", fmt.Errorf("error writing CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("error writing CSV: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func (f *Formatter) row(flag detector.RiskFlag, suppressedBy string, options formatters.FormatterOptions) []string {
	row := []string{
		flag.Type,
		string(flag.Severity),
		shared.ReferenceJurisdiction(flag),
		shared.ReferenceTitle(flag),
		flag.Excerpt,
	}
	if options.Verbose {
		row = append(row, flag.Explanation)
	}
	return append(row, suppressedBy)
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
