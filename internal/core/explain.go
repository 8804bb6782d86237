// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"strings"
	"unicode/utf8"

	"lease-scan/internal/rules"
)

// explainers hold hand-written templates for rules that need more than the
// generic "may violate" sentence
var explainers = map[string]func(rule rules.Rule, excerptLower string) string{
	"security-deposit": explainSecurityDeposit,
	"habitability":     explainHabitability,
}

// Explain builds the user-facing explanation for a flag
func Explain(rule rules.Rule, excerpt string) string {
	if fn, ok := explainers[rule.ID]; ok {
		return fn(rule, strings.ToLower(excerpt))
	}
	return rule.Text + " This clause may violate: " + rule.Title + "."
}

func explainSecurityDeposit(rule rules.Rule, lower string) string {
	switch {
	case containsAny(lower, "exceeds", "one month", "more than"):
		return "The lease requires a security deposit that exceeds one month's rent. " + rule.Text +
			" Language allowing withholding at the landlord's discretion for broad categories may conflict with tenant protection rules."
	case containsAny(lower, "discretion", "withhold", "administrative"):
		return `The lease allows withholding of the security deposit at the landlord's discretion for broad categories such as "administrative costs" or "other expenses." ` +
			rule.Text + " This may conflict with requirements for itemized deductions and tenant protection rules."
	default:
		return rule.Text + " This clause may conflict with security deposit requirements including limits on withholding, mandatory itemized deductions, and required disclosures."
	}
}

func explainHabitability(rule rules.Rule, _ string) string {
	return "While tenants may be responsible for routine maintenance, landlords cannot shift responsibility for essential habitability conditions such as heat, plumbing, and code compliance. " + rule.Text
}

// Excerpt trims text to MaxExcerptLength bytes, on a rune boundary, adding "..." when cut
func Excerpt(text string) string {
	return clip(text, MaxExcerptLength)
}

func clip(text string, n int) string {
	if len(text) <= n {
		return text
	}
	for n > 0 && !utf8.RuneStart(text[n]) {
		n--
	}
	return text[:n] + "..."
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
