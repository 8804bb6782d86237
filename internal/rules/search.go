// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package rules

import "strings"

// Search returns rules whose keywords, id or title appear in the query.
// When nothing matches directly, common topic words are mapped to rule ids.
// limit <= 0 returns every match.
func (l *Library) Search(query, jurisdiction string, limit int) []Rule {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	candidates := l.ForJurisdiction(jurisdiction)

	var found []Rule
	for _, rule := range candidates {
		if matchesQuery(q, rule) {
			found = append(found, rule)
		}
	}

	if len(found) == 0 {
		added := make(map[string]bool)
		for _, entry := range topicRules {
			if !strings.Contains(q, entry.topic) || added[entry.ruleID] {
				continue
			}
			for _, rule := range candidates {
				if rule.ID == entry.ruleID {
					found = append(found, rule)
					added[entry.ruleID] = true
					break
				}
			}
		}
	}

	if limit > 0 && len(found) > limit {
		found = found[:limit]
	}
	return found
}

func matchesQuery(q string, rule Rule) bool {
	for _, kw := range rule.Keywords {
		if strings.Contains(q, strings.ToLower(kw)) {
			return true
		}
	}
	if strings.Contains(q, strings.ReplaceAll(rule.ID, "-", " ")) {
		return true
	}
	return strings.Contains(q, strings.ToLower(rule.Title))
}
