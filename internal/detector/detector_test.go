// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		in   string
		want Severity
		ok   bool
	}{
		{"high", SeverityHigh, true},
		{" Warning ", SeverityWarning, true},
		{"INFO", SeverityInfo, true},
		{"critical", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseSeverity(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestConfidenceRank(t *testing.T) {
	assert.Greater(t, ConfidenceHigh.Rank(), ConfidenceMedium.Rank())
	assert.Greater(t, ConfidenceMedium.Rank(), ConfidenceLow.Rank())
	assert.Equal(t, ConfidenceLow.Rank(), Confidence("").Rank())
}

func TestCountBySeverity(t *testing.T) {
	result := &AnalysisResult{Flags: []RiskFlag{
		{Severity: SeverityHigh},
		{Severity: SeverityWarning},
		{Severity: SeverityHigh},
	}}
	assert.Equal(t, 2, result.CountBySeverity(SeverityHigh))
	assert.Equal(t, 1, result.CountBySeverity(SeverityWarning))
	assert.Zero(t, result.CountBySeverity(SeverityInfo))
}

func TestRiskFlagJSONShape(t *testing.T) {
	flag := RiskFlag{
		Type:     "entry-notice",
		Excerpt:  "Landlord may enter at any time",
		Severity: SeverityHigh,
		LegalReference: &LegalReference{
			Title:        "Landlord Entry",
			Jurisdiction: "California",
		},
	}
	data, err := json.Marshal(flag)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "entry-notice", raw["type"])
	assert.Contains(t, raw, "legalReference")

	flag.LegalReference = nil
	data, err = json.Marshal(flag)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "legalReference")
}
