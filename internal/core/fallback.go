// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"regexp"
	"strings"

	"lease-scan/internal/detector"
)

const (
	fallbackExcerptLength = 200
	fallbackOverlapPrefix = 50
)

// riskPatterns are the plain pattern checks run when pattern fallback is on.
// They carry no relevance gating and no legal reference.
var riskPatterns = []struct {
	flagType    string
	pattern     *regexp.Regexp
	severity    detector.Severity
	explanation string
}{
	{
		flagType:    "illegal_entry",
		pattern:     regexp.MustCompile(`(?i)enter at any time`),
		severity:    detector.SeverityHigh,
		explanation: "Landlords are usually required to give notice before entering a unit.",
	},
	{
		flagType:    "auto_renewal",
		pattern:     regexp.MustCompile(`(?i)automatic renewal`),
		severity:    detector.SeverityWarning,
		explanation: "Automatic renewal clauses can lock you into a lease without your explicit consent.",
	},
	{
		flagType:    "deposit_risk",
		pattern:     regexp.MustCompile(`(?i)non-refundable deposit`),
		severity:    detector.SeverityHigh,
		explanation: "Non-refundable deposits may not be legally enforceable in many jurisdictions.",
	},
}

// detectPatterns flags the first line matching each pattern, with the
// following line appended for context
func detectPatterns(text string) []detector.RiskFlag {
	var flags []detector.RiskFlag
	lines := strings.Split(text, "\n")

	for _, rp := range riskPatterns {
		for i, line := range lines {
			if !rp.pattern.MatchString(line) {
				continue
			}
			excerpt := strings.TrimSpace(line)
			if i+1 < len(lines) && lines[i+1] != "" {
				excerpt += " " + strings.TrimSpace(lines[i+1])
			}
			flags = append(flags, detector.RiskFlag{
				Type:        rp.flagType,
				Excerpt:     clip(excerpt, fallbackExcerptLength),
				Explanation: rp.explanation,
				Severity:    rp.severity,
			})
			break
		}
	}
	return flags
}

// mergeFallback appends pattern flags whose excerpt is not already covered
// by an existing flag
func mergeFallback(flags, fallback []detector.RiskFlag) []detector.RiskFlag {
	for _, f := range fallback {
		prefix := strings.ToLower(f.Excerpt)
		if len(prefix) > fallbackOverlapPrefix {
			prefix = prefix[:fallbackOverlapPrefix]
		}

		covered := false
		for _, existing := range flags {
			if strings.Contains(strings.ToLower(existing.Excerpt), prefix) {
				covered = true
				break
			}
		}
		if !covered {
			flags = append(flags, f)
		}
	}
	return flags
}
