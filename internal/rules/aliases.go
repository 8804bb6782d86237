// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package rules

// placeAliases maps lower-cased city, state and abbreviation forms to the
// lower-cased jurisdiction of the document that covers them.
// "washington" on its own is the District, never the state.
var placeAliases = map[string]string{
	"dc":                   "washington, dc",
	"d.c.":                 "washington, dc",
	"washington":           "washington, dc",
	"washington dc":        "washington, dc",
	"washington d.c.":      "washington, dc",
	"district of columbia": "washington, dc",

	"ca":            "california",
	"san francisco": "california",
	"los angeles":   "california",
	"san diego":     "california",

	"ny":            "new york",
	"nyc":           "new york",
	"new york city": "new york",

	"tx":     "texas",
	"austin": "texas",

	"chicago":  "chicago, illinois",
	"illinois": "chicago, illinois",
	"il":       "chicago, illinois",

	"seattle":          "seattle, washington",
	"wa":               "seattle, washington",
	"washington state": "seattle, washington",

	"boston":        "boston, massachusetts",
	"massachusetts": "boston, massachusetts",
	"ma":            "boston, massachusetts",
}

// stateAliases is consulted only for the state half of "City, State".
// Here "washington" is the state.
var stateAliases = map[string]string{
	"dc":                   "washington, dc",
	"district of columbia": "washington, dc",
	"california":           "california",
	"ca":                   "california",
	"new york":             "new york",
	"ny":                   "new york",
	"texas":                "texas",
	"tx":                   "texas",
	"illinois":             "chicago, illinois",
	"il":                   "chicago, illinois",
	"washington":           "seattle, washington",
	"wa":                   "seattle, washington",
	"massachusetts":        "boston, massachusetts",
	"ma":                   "boston, massachusetts",
}

// topicRules maps plain-language topics to rule ids for Search.
// Ordered so results are stable.
var topicRules = []struct {
	topic  string
	ruleID string
}{
	{"security deposit", "security-deposit"},
	{"pet", "pet-deposits"},
	{"fees", "security-deposit"},
	{"eviction", "eviction-protections"},
	{"notice", "eviction-protections"},
	{"repair", "habitability"},
	{"maintenance", "habitability"},
	{"habitability", "habitability"},
	{"discrimination", "discrimination"},
	{"retaliation", "retaliation"},
	{"privacy", "entry-notice"},
	{"entry", "entry-notice"},
}
