// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lease-scan/internal/detector"
	"lease-scan/internal/suppressions"
)

func seed(t *testing.T) (string, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "suppressions.yaml")
	flag := detector.RiskFlag{
		Type:     "security-deposit",
		Severity: detector.SeverityHigh,
		Excerpt:  "Security deposit: $500 (non-refundable)",
		LegalReference: &detector.LegalReference{
			Jurisdiction: "California",
			Title:        "Security Deposit Limits",
		},
	}
	manager := suppressions.NewSuppressionManager(path)
	require.NoError(t, manager.GenerateSuppressionRules([]detector.RiskFlag{flag}, "reviewed", false))
	return path, suppressions.FlagHash(flag)
}

func TestRunRequiresAction(t *testing.T) {
	var out bytes.Buffer
	assert.Equal(t, 1, run(nil, &out))
	assert.Contains(t, out.String(), "--action is required")

	out.Reset()
	assert.Equal(t, 1, run([]string{"--action", "explode"}, &out))
	assert.Contains(t, out.String(), "Unknown action 'explode'")
}

func TestRunLifecycle(t *testing.T) {
	path, hash := seed(t)
	var out bytes.Buffer

	require.Equal(t, 0, run([]string{"--suppression-file", path, "--action", "list"}, &out))
	assert.Contains(t, out.String(), "ID: SUP-00000001 (disabled)")
	assert.Contains(t, out.String(), "flag_type: security-deposit")

	out.Reset()
	require.Equal(t, 0, run([]string{"--suppression-file", path, "--action", "enable", "--hash", hash, "--reason", "negotiated"}, &out))
	assert.Contains(t, out.String(), hash[:8])
	rules := suppressions.NewSuppressionManager(path).ListSuppressions()
	require.Len(t, rules, 1)
	assert.True(t, rules[0].Enabled)
	assert.Equal(t, "negotiated", rules[0].Reason)

	out.Reset()
	require.Equal(t, 0, run([]string{"--suppression-file", path, "--action", "disable", "--id", "SUP-00000001"}, &out))
	assert.False(t, suppressions.NewSuppressionManager(path).ListSuppressions()[0].Enabled)

	out.Reset()
	require.Equal(t, 0, run([]string{"--suppression-file", path, "--action", "cleanup"}, &out))
	assert.Contains(t, out.String(), "Cleaned up 0 expired")

	out.Reset()
	require.Equal(t, 0, run([]string{"--suppression-file", path, "--action", "remove", "--id", "SUP-00000001"}, &out))
	assert.Empty(t, suppressions.NewSuppressionManager(path).ListSuppressions())

	out.Reset()
	assert.Equal(t, 1, run([]string{"--suppression-file", path, "--action", "remove", "--id", "SUP-00000001"}, &out))
	assert.Contains(t, out.String(), "not found")
}

func TestRunMissingArguments(t *testing.T) {
	path, _ := seed(t)
	for _, action := range []string{"remove", "enable", "disable"} {
		var out bytes.Buffer
		assert.Equal(t, 1, run([]string{"--suppression-file", path, "--action", action}, &out), action)
		assert.Contains(t, out.String(), "is required", action)
	}
}
