// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package help

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"lease-scan/internal/rules"
)

func newTestSystem() (*System, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewSystem(rules.MustDefault(), &buf, true), &buf
}

func TestShowGeneralHelp(t *testing.T) {
	h, buf := newTestSystem()
	h.ShowGeneralHelp()

	out := buf.String()
	assert.Contains(t, out, "lease-scan --file")
	assert.Contains(t, out, "--jurisdiction")
	assert.Contains(t, out, "not legal advice")
	assert.NotContains(t, out, "\x1b[")
}

func TestShowRules(t *testing.T) {
	h, buf := newTestSystem()
	assert.True(t, h.ShowRules("California"))

	out := buf.String()
	assert.Contains(t, out, "Lease rules for California")
	assert.Contains(t, out, "entry-notice")
	assert.Contains(t, out, "pet-deposits")
	assert.NotContains(t, out, "automatic-renewal")

	buf.Reset()
	assert.False(t, h.ShowRules("Atlantis"))
	assert.Contains(t, buf.String(), "No rules found")
}

func TestShowSearch(t *testing.T) {
	h, buf := newTestSystem()
	assert.True(t, h.ShowSearch("privacy", "Boston", 3))
	assert.Contains(t, buf.String(), "entry-notice")

	buf.Reset()
	assert.False(t, h.ShowSearch("", "", 3))
}

func TestShowRuleHelp(t *testing.T) {
	h, buf := newTestSystem()
	assert.True(t, h.ShowRuleHelp("automatic-renewal", ""))

	out := buf.String()
	assert.Contains(t, out, "(Washington, DC)")
	assert.Contains(t, out, "(New York)")
	assert.Contains(t, out, "shall automatically renew")
	assert.Contains(t, out, "exact violation example")
	assert.Equal(t, 1, strings.Count(out, "Scoring:"))

	buf.Reset()
	assert.True(t, h.ShowRuleHelp("AUTOMATIC-RENEWAL", "New York"))
	assert.NotContains(t, buf.String(), "(Washington, DC)")

	buf.Reset()
	assert.False(t, h.ShowRuleHelp("no-such-rule", ""))
}

func TestShowJurisdictions(t *testing.T) {
	h, buf := newTestSystem()
	h.ShowJurisdictions()

	out := buf.String()
	assert.Contains(t, out, "Austin, Texas")
	assert.Contains(t, out, "San Diego, California")
}

func TestWrap(t *testing.T) {
	got := wrap("one two three four five", 12, "  ")
	assert.Equal(t, "  one two\n  three four\n  five", got)
	for _, line := range strings.Split(got, "\n") {
		assert.LessOrEqual(t, len(line), 12)
	}
}
