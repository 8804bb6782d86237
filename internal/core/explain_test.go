// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lease-scan/internal/detector"
	"lease-scan/internal/rules"
)

func TestExplainGeneric(t *testing.T) {
	r := rules.Rule{ID: "late-fees", Title: "Late Fee Limits", Text: "Late fees must be reasonable."}
	assert.Equal(t, "Late fees must be reasonable. This clause may violate: Late Fee Limits.", Explain(r, "anything"))
}

func TestExplainSecurityDeposit(t *testing.T) {
	r := rules.Rule{ID: "security-deposit", Title: "Security Deposits", Text: "Deposits are capped."}

	assert.True(t, strings.HasPrefix(Explain(r, "A deposit that EXCEEDS one month's rent"),
		"The lease requires a security deposit that exceeds one month's rent. Deposits are capped."))
	assert.True(t, strings.HasPrefix(Explain(r, "withheld at landlord's discretion"),
		"The lease allows withholding of the security deposit at the landlord's discretion"))
	assert.Equal(t, "Deposits are capped. This clause may conflict with security deposit requirements including limits on withholding, mandatory itemized deductions, and required disclosures.",
		Explain(r, "Security deposit: $500 (non-refundable)"))
}

func TestExplainHabitability(t *testing.T) {
	r := rules.Rule{ID: "habitability", Text: "Landlords must keep units habitable."}
	got := Explain(r, "tenant does all repairs")
	assert.True(t, strings.HasSuffix(got, "Landlords must keep units habitable."))
	assert.Contains(t, got, "essential habitability conditions")
}

func TestExcerpt(t *testing.T) {
	short := "Landlord may enter at any time."
	assert.Equal(t, short, Excerpt(short))

	long := strings.Repeat("a", 400)
	got := Excerpt(long)
	assert.Equal(t, strings.Repeat("a", MaxExcerptLength)+"...", got)

	// never splits a multi-byte rune
	multi := strings.Repeat("a", MaxExcerptLength-1) + "é" + "tail"
	got = Excerpt(multi)
	assert.Equal(t, strings.Repeat("a", MaxExcerptLength-1)+"...", got)
}

func TestDetectPatterns(t *testing.T) {
	text := "Clause 1.\nLandlord may ENTER AT ANY TIME for inspection\nand repairs.\n\nA non-refundable deposit of $200 applies.\n"

	flags := detectPatterns(text)
	require.Len(t, flags, 2)

	assert.Equal(t, "illegal_entry", flags[0].Type)
	assert.Equal(t, "Landlord may ENTER AT ANY TIME for inspection and repairs.", flags[0].Excerpt)
	assert.Equal(t, detector.SeverityHigh, flags[0].Severity)

	assert.Equal(t, "deposit_risk", flags[1].Type)
	assert.Equal(t, "A non-refundable deposit of $200 applies.", flags[1].Excerpt)

	assert.Empty(t, detectPatterns("nothing risky here"))
}

func TestDetectPatternsClipsExcerpt(t *testing.T) {
	flags := detectPatterns("automatic renewal " + strings.Repeat("x", 300))
	require.Len(t, flags, 1)
	assert.Len(t, flags[0].Excerpt, fallbackExcerptLength+3)
}

func TestMergeFallbackSkipsCovered(t *testing.T) {
	existing := []detector.RiskFlag{{
		Type:    "entry-notice",
		Excerpt: "Landlord may enter at any time for inspection and repairs. Tenant consents.",
	}}
	fallback := []detector.RiskFlag{
		{Type: "illegal_entry", Excerpt: "Landlord may ENTER at any time for inspection and repairs."},
		{Type: "auto_renewal", Excerpt: "Automatic renewal applies."},
	}

	merged := mergeFallback(existing, fallback)
	require.Len(t, merged, 2)
	assert.Equal(t, "entry-notice", merged[0].Type)
	assert.Equal(t, "auto_renewal", merged[1].Type)
}
