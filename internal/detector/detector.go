// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"strings"
	"time"

	"lease-scan/internal/rules"
)

// Confidence is the internal tier that gates whether a match is surfaced at all
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Rank orders confidence tiers for sorting (higher is stronger)
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	default:
		return 1
	}
}

// Severity is the user-facing risk tier attached to a flag
type Severity string

const (
	SeverityHigh    Severity = "high"
	SeverityWarning Severity = "warning"
	// SeverityInfo is reserved; the rule-matching path never produces it.
	SeverityInfo Severity = "info"
)

// ParseSeverity maps a case-insensitive name onto a Severity.
func ParseSeverity(s string) (Severity, bool) {
	sev := Severity(strings.ToLower(strings.TrimSpace(s)))
	switch sev {
	case SeverityHigh, SeverityWarning, SeverityInfo:
		return sev, true
	}
	return "", false
}

// Match is the scorer's verdict for one (chunk, rule) pair
type Match struct {
	Rule            rules.Rule
	Jurisdiction    string // jurisdiction that owns Rule, not the document's
	Score           float64
	Confidence      Confidence
	MatchedKeywords []string
	MatchedText     string
	ChunkIndex      int

	// ExcerptRelevant records whether the rule's relevance heuristic accepted the chunk
	ExcerptRelevant bool
}

// LegalReference is the citation attached to a flag
type LegalReference struct {
	Title        string `json:"title" yaml:"title"`
	Text         string `json:"text" yaml:"text"`
	Jurisdiction string `json:"jurisdiction" yaml:"jurisdiction"`
}

// RiskFlag is one flagged clause in the final output
type RiskFlag struct {
	Type           string          `json:"type" yaml:"type"`
	Excerpt        string          `json:"excerpt" yaml:"excerpt"`
	Explanation    string          `json:"explanation" yaml:"explanation"`
	LegalReference *LegalReference `json:"legalReference,omitempty" yaml:"legalReference,omitempty"`
	Severity       Severity        `json:"severity" yaml:"severity"`
}

// SuppressedFlag is a flag removed from the output by a suppression rule
type SuppressedFlag struct {
	Flag         RiskFlag   `json:"flag" yaml:"flag"`
	SuppressedBy string     `json:"suppressedBy" yaml:"suppressedBy"`
	RuleReason   string     `json:"ruleReason" yaml:"ruleReason"`
	ExpiresAt    *time.Time `json:"expiresAt,omitempty" yaml:"expiresAt,omitempty"`
}

// AnalysisResult is the top-level output of one document analysis
type AnalysisResult struct {
	Summary       string           `json:"summary" yaml:"summary"`
	Flags         []RiskFlag       `json:"flags" yaml:"flags"`
	Disclaimer    string           `json:"disclaimer" yaml:"disclaimer"`
	Jurisdiction  string           `json:"jurisdiction,omitempty" yaml:"jurisdiction,omitempty"`
	ExtractedText string           `json:"extractedText,omitempty" yaml:"extractedText,omitempty"`
	Suppressed    []SuppressedFlag `json:"suppressed,omitempty" yaml:"suppressed,omitempty"`
}

// CountBySeverity returns how many flags carry the given severity
func (r *AnalysisResult) CountBySeverity(severity Severity) int {
	count := 0
	for _, flag := range r.Flags {
		if flag.Severity == severity {
			count++
		}
	}
	return count
}
