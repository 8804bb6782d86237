// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package scoring

// Signal weights. These were tuned by hand against real lease text and
// favor precision over recall. Keep the ordering
// exact phrase > semantic boost > keyword phrase > single keyword > shared term.
const (
	// violation examples
	WeightExactPhrase   = 15.0
	WeightPartialPhrase = 8.0

	// keywords
	WeightKeywordPhrase = 4.0
	WeightKeywordWord   = 2.0

	// security-deposit boosts
	WeightDiscretion    = 10.0
	WeightExcessAmount  = 8.0
	WeightNonRefundable = 12.0

	// legal vocabulary present in both chunk and rule text
	WeightSharedTerm = 1.0

	// density bonus per distinct keyword beyond DensityFloor
	WeightDensity = 1.0
)

// Thresholds
const (
	// DefaultMinScore is the score a (chunk, rule) pair needs to be considered at all
	DefaultMinScore  = 10.0
	HighConfidence   = 18.0
	MediumConfidence = 12.0
	HighSeverity     = 18.0

	// PartialMatchRatio is the share of significant example words that must appear
	PartialMatchRatio = 0.8

	// significant words in a violation example are longer than this
	partialWordMinLen = 3

	// DensityMinKeywords distinct keywords trigger the density bonus
	DensityMinKeywords = 3
	DensityFloor       = 2
)

// sharedTerms is the legally load-bearing vocabulary compared as whole words
var sharedTerms = []string{
	"required", "must", "shall", "prohibited", "illegal",
	"violation", "refund", "deposit", "entry", "renewal",
}
