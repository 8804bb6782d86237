// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package jurisdiction infers which jurisdiction's rules apply to a lease.
//
// Inference is a fixed-priority substring scan over the lower-cased
// document text. The first check that matches wins; there is no voting.
// A lease that mentions another city anywhere, even in a disclaimer, can
// resolve to that city.
package jurisdiction

import "strings"

// Supported jurisdiction identifiers
const (
	WashingtonDC  = "Washington, DC"
	SanFrancisco  = "San Francisco, California"
	LosAngeles    = "Los Angeles, California"
	SanDiego      = "San Diego, California"
	NewYorkCity   = "New York City, New York"
	Austin        = "Austin, Texas"
	Chicago       = "Chicago, Illinois"
	Seattle       = "Seattle, Washington"
	Boston        = "Boston, Massachusetts"
	California    = "California"
	Texas         = "Texas"
	Illinois      = "Illinois"
	Massachusetts = "Massachusetts"
)

// Auto is the override value that requests inference from the text
const Auto = "auto"

// Supported lists the identifiers Resolve can produce, in priority order
func Supported() []string {
	out := make([]string, 0, len(checks))
	seen := make(map[string]bool)
	for _, c := range checks {
		if !seen[c.result] {
			seen[c.result] = true
			out = append(out, c.result)
		}
	}
	return out
}

// IsAuto reports whether override asks for inference
func IsAuto(override string) bool {
	o := strings.TrimSpace(override)
	return o == "" || strings.EqualFold(o, Auto)
}

// check is one entry of the priority table
type check struct {
	result string
	match  func(text string) bool
}

func containsAny(subs ...string) func(string) bool {
	return func(text string) bool {
		for _, s := range subs {
			if strings.Contains(text, s) {
				return true
			}
		}
		return false
	}
}

// checks is evaluated top to bottom. City names come before states, and
// Austin is first.
var checks = []check{
	{Austin, containsAny("austin")},
	{Chicago, containsAny("chicago")},
	{Seattle, containsAny("seattle")},
	{Boston, containsAny("boston")},
	{NewYorkCity, containsAny("nyc", "new york city", "manhattan", "brooklyn", "queens", "bronx")},
	{SanFrancisco, containsAny("san francisco")},
	{LosAngeles, containsAny("los angeles")},
	{SanDiego, containsAny("san diego")},
	{WashingtonDC, func(text string) bool {
		return strings.Contains(text, "district of columbia") ||
			(strings.Contains(text, "washington") && strings.Contains(text, " dc "))
	}},
	{NewYorkCity, func(text string) bool {
		return strings.Contains(text, "new york") &&
			(strings.Contains(text, " ny ") || strings.Contains(text, "new york state"))
	}},
	{California, containsAny("california")},
	{Texas, containsAny("texas")},
	{Illinois, containsAny("illinois")},
	{Massachusetts, containsAny("massachusetts")},
}

// Resolve picks the jurisdiction for a document. A non-empty override other
// than "auto" is returned verbatim. Otherwise the text is scanned and ok is
// false when nothing matched.
func Resolve(text, override string) (string, bool) {
	if !IsAuto(override) {
		return override, true
	}

	lower := strings.ToLower(text)
	for _, c := range checks {
		if c.match(lower) {
			return c.result, true
		}
	}
	return "", false
}
