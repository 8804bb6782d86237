// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package scoring

import (
	"math"
	"sort"
	"strings"

	"lease-scan/internal/detector"
	"lease-scan/internal/rules"
)

// Score returns the lexical evidence that chunk relates to rule. It is the
// sum of violation-example, keyword, rule-specific, shared-term and density
// signals and is never negative.
func Score(chunk string, rule rules.Rule) float64 {
	lower := strings.ToLower(chunk)
	strategy := StrategyFor(rule.ID)

	var score float64
	score += exampleScore(lower, rule, strategy)
	score += keywordScore(lower, rule, strategy)
	if strategy.Boost != nil {
		score += strategy.Boost(lower)
	}
	score += sharedTermScore(lower, rule, strategy)
	score += densityBonus(lower, rule)
	return score
}

func exampleScore(lower string, rule rules.Rule, strategy Strategy) float64 {
	if strategy.SkipExamples != nil && strategy.SkipExamples(lower) {
		return 0
	}

	var score float64
	for _, example := range rule.ViolationExamples {
		exampleLower := strings.ToLower(example)
		if strings.Contains(lower, exampleLower) {
			score += WeightExactPhrase
			continue
		}
		if partialMatch(lower, exampleLower) {
			score += WeightPartialPhrase
		}
	}
	return score
}

// partialMatch requires most significant words of the example in the chunk.
// An example with no significant words never partially matches.
func partialMatch(lower, exampleLower string) bool {
	var words []string
	for _, w := range strings.Fields(exampleLower) {
		if len(w) > partialWordMinLen {
			words = append(words, w)
		}
	}
	if len(words) == 0 {
		return false
	}

	found := 0
	for _, w := range words {
		if strings.Contains(lower, w) {
			found++
		}
	}
	needed := int(math.Ceil(float64(len(words)) * PartialMatchRatio))
	return found >= needed
}

func keywordScore(lower string, rule rules.Rule, strategy Strategy) float64 {
	var score float64
	for _, keyword := range rule.Keywords {
		keywordLower := strings.ToLower(keyword)
		if strategy.SkipKeyword != nil && strategy.SkipKeyword(keywordLower, lower) {
			continue
		}
		if !strings.Contains(lower, keywordLower) {
			continue
		}
		if len(strings.Fields(keywordLower)) > 1 {
			score += WeightKeywordPhrase
		} else {
			score += WeightKeywordWord
		}
	}
	return score
}

func sharedTermScore(lower string, rule rules.Rule, strategy Strategy) float64 {
	terms := sharedTerms
	if strategy.ExtraSharedTerms != nil {
		if extra := strategy.ExtraSharedTerms(lower); len(extra) > 0 {
			terms = append(append([]string(nil), sharedTerms...), extra...)
		}
	}

	chunkWords := wordSet(lower)
	ruleWords := wordSet(strings.ToLower(rule.Text))

	var score float64
	for _, term := range terms {
		if chunkWords[term] && ruleWords[term] {
			score += WeightSharedTerm
		}
	}
	return score
}

func densityBonus(lower string, rule rules.Rule) float64 {
	count := 0
	for _, keyword := range rule.Keywords {
		if strings.Contains(lower, strings.ToLower(keyword)) {
			count++
		}
	}
	if count < DensityMinKeywords {
		return 0
	}
	return float64(count-DensityFloor) * WeightDensity
}

func wordSet(s string) map[string]bool {
	words := strings.Fields(s)
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// IsRelevant reports whether the chunk genuinely supports a violation of the
// rule, independent of its score.
func IsRelevant(chunk string, rule rules.Rule) bool {
	lower := strings.ToLower(chunk)
	if strategy := StrategyFor(rule.ID); strategy.Relevant != nil {
		return strategy.Relevant(lower, rule)
	}
	return defaultRelevant(lower, rule)
}

// Classify maps a score and relevance verdict to a confidence tier.
// An irrelevant excerpt is always low.
func Classify(score float64, relevant bool) detector.Confidence {
	switch {
	case !relevant:
		return detector.ConfidenceLow
	case score >= HighConfidence:
		return detector.ConfidenceHigh
	case score >= MediumConfidence:
		return detector.ConfidenceMedium
	default:
		return detector.ConfidenceLow
	}
}

// SeverityFor maps a retained match to its user-facing severity
func SeverityFor(confidence detector.Confidence, score float64) detector.Severity {
	if confidence == detector.ConfidenceHigh && score >= HighSeverity {
		return detector.SeverityHigh
	}
	return detector.SeverityWarning
}

// FindMatches scores one chunk against every candidate rule and returns the
// relevant medium and high confidence matches at or above minScore, strongest
// first. Ties keep candidate order.
func FindMatches(chunk string, candidates []rules.Rule, minScore float64) []detector.Match {
	var matches []detector.Match
	lower := strings.ToLower(chunk)

	for _, rule := range candidates {
		score := Score(chunk, rule)
		if score < minScore {
			continue
		}
		relevant := IsRelevant(chunk, rule)
		confidence := Classify(score, relevant)
		if !relevant || confidence == detector.ConfidenceLow {
			continue
		}

		matches = append(matches, detector.Match{
			Rule:            rule,
			Jurisdiction:    rule.Jurisdiction,
			Score:           score,
			Confidence:      confidence,
			MatchedKeywords: matchedTerms(lower, rule),
			MatchedText:     chunk,
			ExcerptRelevant: relevant,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Confidence.Rank() > matches[j].Confidence.Rank()
	})
	return matches
}

func matchedTerms(lower string, rule rules.Rule) []string {
	var out []string
	for _, kw := range rule.Keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			out = append(out, kw)
		}
	}
	for _, ex := range rule.ViolationExamples {
		if strings.Contains(lower, strings.ToLower(ex)) {
			out = append(out, ex)
		}
	}
	return out
}
