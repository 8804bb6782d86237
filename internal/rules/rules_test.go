// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package rules

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLibrary(t *testing.T) {
	lib, err := Default()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Washington, DC",
		"California",
		"New York",
		"Texas",
		"Chicago, Illinois",
		"Seattle, Washington",
		"Boston, Massachusetts",
	}, lib.Jurisdictions())

	for _, rule := range lib.All() {
		assert.NotEmpty(t, rule.Jurisdiction, "rule %s has no jurisdiction", rule.ID)
		assert.NotEmpty(t, rule.Keywords, "rule %s/%s has no keywords", rule.Jurisdiction, rule.ID)
	}
}

func TestSameIDAcrossJurisdictionsStaysDistinct(t *testing.T) {
	lib := MustDefault()

	ca, ok := lib.ByID("security-deposit", "California")
	require.True(t, ok)
	dc, ok := lib.ByID("security-deposit", "Washington, DC")
	require.True(t, ok)

	assert.Equal(t, "California", ca.Jurisdiction)
	assert.Equal(t, "Washington, DC", dc.Jurisdiction)
	assert.NotEqual(t, ca.Text, dc.Text)
}

func TestForJurisdiction(t *testing.T) {
	lib := MustDefault()

	tests := []struct {
		name         string
		jurisdiction string
		want         string
	}{
		{"exact", "California", "California"},
		{"case insensitive", "chicago, illinois", "Chicago, Illinois"},
		{"extra whitespace", "  Washington,   DC ", "Washington, DC"},
		{"washington alone is the district", "Washington", "Washington, DC"},
		{"dc abbreviation", "DC", "Washington, DC"},
		{"seattle with state", "Seattle, Washington", "Seattle, Washington"},
		{"state half of city state", "Spokane, Washington", "Seattle, Washington"},
		{"san francisco", "San Francisco, California", "California"},
		{"los angeles", "Los Angeles, California", "California"},
		{"san diego", "San Diego, California", "California"},
		{"nyc", "NYC", "New York"},
		{"new york city", "New York City, New York", "New York"},
		{"austin", "Austin, Texas", "Texas"},
		{"tx", "TX", "Texas"},
		{"boston", "Boston, Massachusetts", "Boston, Massachusetts"},
		{"ma", "MA", "Boston, Massachusetts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lib.ForJurisdiction(tt.jurisdiction)
			require.NotEmpty(t, got)
			for _, rule := range got {
				assert.Equal(t, tt.want, rule.Jurisdiction)
			}
		})
	}
}

func TestForJurisdictionEmptyReturnsAll(t *testing.T) {
	lib := MustDefault()
	assert.Len(t, lib.ForJurisdiction(""), len(lib.All()))
	assert.Len(t, lib.ForJurisdiction("   "), len(lib.All()))
}

func TestForJurisdictionUnknown(t *testing.T) {
	lib := MustDefault()
	assert.Empty(t, lib.ForJurisdiction("Atlantis"))
	assert.Empty(t, lib.ForJurisdiction("Portland, Oregon"))
}

func TestForJurisdictionReturnsCopy(t *testing.T) {
	lib := MustDefault()
	got := lib.ForJurisdiction("California")
	got[0].Title = "changed"

	again := lib.ForJurisdiction("California")
	assert.NotEqual(t, "changed", again[0].Title)
}

func TestByIDWithoutJurisdiction(t *testing.T) {
	lib := MustDefault()

	rule, ok := lib.ByID("automatic-renewal", "")
	require.True(t, ok)
	assert.Equal(t, "Washington, DC", rule.Jurisdiction)

	_, ok = lib.ByID("no-such-rule", "")
	assert.False(t, ok)
}

func TestSearch(t *testing.T) {
	lib := MustDefault()

	t.Run("keyword match", func(t *testing.T) {
		got := lib.Search("Can my landlord keep my security deposit?", "California", 3)
		require.Len(t, got, 1)
		assert.Equal(t, "security-deposit", got[0].ID)
	})

	t.Run("topic fallback", func(t *testing.T) {
		got := lib.Search("what about privacy?", "California", 3)
		require.Len(t, got, 1)
		assert.Equal(t, "entry-notice", got[0].ID)
	})

	t.Run("limit", func(t *testing.T) {
		got := lib.Search("deposit", "", 2)
		assert.Len(t, got, 2)
	})

	t.Run("empty query", func(t *testing.T) {
		assert.Empty(t, lib.Search("  ", "", 3))
	})
}

const validDoc = `
jurisdiction: "Testland"
title: "Test"
sections:
  - id: a
    title: "A"
    text: "Rule A."
    keywords: ["alpha"]
    violation_examples: ["alpha beta"]
`

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		fs   fstest.MapFS
	}{
		{"no documents", fstest.MapFS{}},
		{"bad yaml", fstest.MapFS{"x.yaml": {Data: []byte("jurisdiction: [")}}},
		{"missing jurisdiction", fstest.MapFS{"x.yaml": {Data: []byte("title: T\nsections:\n  - id: a\n    title: A\n    text: t\n    keywords: [k]\n")}}},
		{"missing text", fstest.MapFS{"x.yaml": {Data: []byte("jurisdiction: J\ntitle: T\nsections:\n  - id: a\n    title: A\n    keywords: [k]\n")}}},
		{"no matching data", fstest.MapFS{"x.yaml": {Data: []byte("jurisdiction: J\ntitle: T\nsections:\n  - id: a\n    title: A\n    text: t\n")}}},
		{"duplicate id", fstest.MapFS{"x.yaml": {Data: []byte("jurisdiction: J\ntitle: T\nsections:\n  - id: a\n    title: A\n    text: t\n    keywords: [k]\n  - id: a\n    title: B\n    text: t\n    keywords: [k]\n")}}},
		{"duplicate jurisdiction", fstest.MapFS{"1.yaml": {Data: []byte(validDoc)}, "2.yaml": {Data: []byte(validDoc)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.fs)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidDocument)
		})
	}
}

func TestLoadAttachesJurisdiction(t *testing.T) {
	lib, err := Load(fstest.MapFS{"doc.yaml": {Data: []byte(validDoc)}})
	require.NoError(t, err)

	all := lib.All()
	require.Len(t, all, 1)
	assert.Equal(t, "Testland", all[0].Jurisdiction)
	assert.Equal(t, []string{"alpha beta"}, all[0].ViolationExamples)
}
