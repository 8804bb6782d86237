// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package shared

import (
	"lease-scan/internal/detector"
	"lease-scan/internal/formatters"
)

// FilterFlagsBySeverity keeps the flags whose severity is enabled in options.
// A nil severity map keeps everything.
func FilterFlagsBySeverity(flags []detector.RiskFlag, options formatters.FormatterOptions) []detector.RiskFlag {
	filtered := make([]detector.RiskFlag, 0, len(flags))
	for _, flag := range flags {
		if options.SeverityLevel == nil || options.SeverityLevel[string(flag.Severity)] {
			filtered = append(filtered, flag)
		}
	}
	return filtered
}

// PrepareResult returns a copy of result with the severity filter applied and
// the extracted text dropped unless requested. The summary is left as the
// analyzer wrote it.
func PrepareResult(result *detector.AnalysisResult, options formatters.FormatterOptions) detector.AnalysisResult {
	out := *result
	out.Flags = FilterFlagsBySeverity(result.Flags, options)
	if !options.ShowText {
		out.ExtractedText = ""
	}
	return out
}

// ReferenceJurisdiction is the citing jurisdiction of a flag, or "" for
// pattern fallback flags
func ReferenceJurisdiction(flag detector.RiskFlag) string {
	if flag.LegalReference == nil {
		return ""
	}
	return flag.LegalReference.Jurisdiction
}

// ReferenceTitle is the cited rule title of a flag, or ""
func ReferenceTitle(flag detector.RiskFlag) string {
	if flag.LegalReference == nil {
		return ""
	}
	return flag.LegalReference.Title
}
