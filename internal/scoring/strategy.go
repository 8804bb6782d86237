// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package scoring

import (
	"strings"

	"lease-scan/internal/rules"
)

// Strategy holds the rule-specific parts of scoring. Any nil field falls
// back to the generic behavior.
type Strategy struct {
	// SkipExamples disables violation-example matching for a chunk
	SkipExamples func(lower string) bool
	// SkipKeyword suppresses one keyword for a chunk
	SkipKeyword func(keyword, lower string) bool
	// Boost adds rule-specific semantic signals
	Boost func(lower string) float64
	// ExtraSharedTerms extends the shared legal vocabulary for a chunk
	ExtraSharedTerms func(lower string) []string
	// Relevant decides whether the chunk actually supports a violation
	Relevant func(lower string, rule rules.Rule) bool
}

var strategies = map[string]Strategy{
	"security-deposit": {
		SkipKeyword: func(keyword, lower string) bool {
			if keyword != "refund" && keyword != "fee" {
				return false
			}
			return !containsAny(lower, "deposit", "security")
		},
		Boost:    securityDepositBoost,
		Relevant: securityDepositRelevant,
	},
	"entry-notice": {
		ExtraSharedTerms: func(lower string) []string {
			if containsAny(lower, "enter", "entry", "access") {
				return []string{"notice"}
			}
			return nil
		},
		Relevant: entryNoticeRelevant,
	},
	"automatic-renewal": {
		SkipExamples: describesRenewalLaw,
		Relevant:     automaticRenewalRelevant,
	},
	"habitability": {
		Relevant: habitabilityRelevant,
	},
}

// StrategyFor returns the strategy registered for a rule id, or the zero
// Strategy (all defaults).
func StrategyFor(ruleID string) Strategy {
	return strategies[ruleID]
}

var (
	discretionIndicators = []string{
		"at discretion", "landlord may withhold", "withheld at",
		"administrative costs", "other expenses", "unilateral",
		"without itemization", "no itemized",
	}
	excessAmountIndicators = []string{"exceeds one month", "exceeds rent", "more than one month"}
)

func securityDepositBoost(lower string) float64 {
	var boost float64
	for _, ind := range discretionIndicators {
		if strings.Contains(lower, ind) {
			boost += WeightDiscretion
		}
	}
	for _, ind := range excessAmountIndicators {
		if strings.Contains(lower, ind) {
			boost += WeightExcessAmount
		}
	}
	if containsAny(lower, "non-refundable", "not refundable") {
		boost += WeightNonRefundable
	}
	return boost
}

func securityDepositRelevant(lower string, _ rules.Rule) bool {
	// application and pet fees are not security deposits
	if strings.Contains(lower, "fee") && !containsAny(lower, "deposit", "security") {
		return false
	}
	hasDepositTerm := containsAny(lower,
		"security deposit", "deposit", "withhold", "discretion", "administrative",
		"itemized", "deduction", "escrow", "exceeds", "one month", "refund")
	excluded := containsAny(lower,
		"application fee", "pet fee", "pet policy", "application", "pet",
		"breed restriction", "weight restriction", "number of pets")
	return hasDepositTerm && !excluded
}

func entryNoticeRelevant(lower string, _ rules.Rule) bool {
	// "enter" and "entry" are definitive regardless of other topics
	if containsAny(lower, "enter", "entry") {
		return true
	}
	hasEntryTerm := containsAny(lower,
		"access", "premises", "unit", "inspection", "repair", "showing")
	excluded := containsAny(lower,
		"termination", "renewal", "default", "fee", "payment", "rent", "deposit")
	return hasEntryTerm && !excluded
}

func habitabilityRelevant(lower string, _ rules.Rule) bool {
	return containsAny(lower,
		"repair", "maintenance", "habitability", "heat", "plumbing",
		"electricity", "code", "condition", "tenant responsible",
		"landlord disclaims", "waive", "essential", "tenant shall", "tenant pays")
}

var (
	renewalLawPhrases = []string{
		"must be separate", "must be signed", "must be acknowledged",
		"prohibited by law", "required by law", "an automatic renewal term",
		"automatic renewal term in a lease must", "must:", "ending tenancy",
	}
	renewalImplementations = []string{
		"shall automatically", "will automatically", "renews automatically", "lease will renew",
	}
)

// describesRenewalLaw reports whether a chunk quotes renewal law rather than
// imposing a renewal; such a chunk must not earn violation-example points.
func describesRenewalLaw(lower string) bool {
	if containsAny(lower, renewalLawPhrases...) {
		return true
	}
	return strings.Contains(lower, "automatic renewal") &&
		!containsAny(lower, renewalImplementations...) &&
		containsAny(lower, "must", "required", "prohibited")
}

var (
	renewalRelevanceExclusions = []string{
		"must be separate", "must be signed", "must be acknowledged",
		"prohibited by law", "required by law", "maryland code",
		"dc code", "tenant bill of rights", "legal requirement",
		"an automatic renewal term", "automatic renewal term in a lease must",
		"must:", "must be", "required to", "shall be", "prohibited",
		"ending tenancy", "for the landlord to end",
	}
	renewalImplementationPhrases = []string{
		"shall automatically renew", "will automatically renew", "automatically renews",
		"lease will renew", "agreement will renew", "renews automatically",
		"automatic renewal of this lease", "this lease shall renew",
		"tenant agrees to automatic renewal", "landlord may renew",
	}
)

func automaticRenewalRelevant(lower string, _ rules.Rule) bool {
	if !containsAny(lower, "renewal", "renew", "automatic", "extend", "extension") {
		return false
	}
	if containsAny(lower, renewalRelevanceExclusions...) {
		return false
	}
	if containsAny(lower, renewalImplementationPhrases...) {
		return true
	}
	// mentions automatic renewal only in the context of what the law requires
	if strings.Contains(lower, "automatic renewal") &&
		containsAny(lower, "must", "required", "prohibited", "code") {
		return false
	}
	return true
}

// defaultRelevant accepts a chunk containing any violation example or keyword
func defaultRelevant(lower string, rule rules.Rule) bool {
	for _, ex := range rule.ViolationExamples {
		if strings.Contains(lower, strings.ToLower(ex)) {
			return true
		}
	}
	for _, kw := range rule.Keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
