// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "text", cfg.Defaults.Format)
	assert.Equal(t, "auto", cfg.Defaults.Jurisdiction)
	assert.True(t, cfg.Defaults.UseSuppressions)
	assert.Equal(t, 10.0, cfg.Analysis.MinScore)
	assert.Equal(t, 500, cfg.Analysis.ChunkSize)
	assert.Equal(t, 100, cfg.Analysis.ChunkOverlap)
	assert.False(t, cfg.Analysis.PatternFallback)
	assert.Equal(t, "8080", cfg.Web.Port)
	assert.Equal(t, 128, cfg.Web.CacheSize)
	assert.Equal(t, []string{"strict", "thorough"}, cfg.ListProfiles())
	assert.NoError(t, ValidateConfig(cfg))
}

func TestLoadConfigOrDefault_NoFile(t *testing.T) {
	cfg := LoadConfigOrDefault("/nonexistent/path/config.yaml")
	require.NotNil(t, cfg)
	assert.Equal(t, "text", cfg.Defaults.Format)
}

func TestLoadConfigValidFile(t *testing.T) {
	path := writeConfig(t, `
defaults:
  format: json
  jurisdiction: California
  severity: high,warning
analysis:
  min_score: 12
  workers: 2
web:
  port: "9090"
logging:
  json: true
profiles:
  review:
    description: team review
    verbose: true
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Defaults.Format)
	assert.Equal(t, "California", cfg.Defaults.Jurisdiction)
	assert.Equal(t, "high,warning", cfg.Defaults.Severity)
	assert.True(t, cfg.Defaults.UseSuppressions, "absent bool keeps its true default")
	assert.Equal(t, 12.0, cfg.Analysis.MinScore)
	assert.Equal(t, 500, cfg.Analysis.ChunkSize, "unset fields keep defaults")
	assert.Equal(t, 2, cfg.Analysis.Workers)
	assert.Equal(t, "9090", cfg.Web.Port)
	assert.True(t, cfg.Logging.JSON)

	profile := cfg.GetProfile("review")
	require.NotNil(t, profile)
	assert.True(t, profile.Verbose)
	assert.Nil(t, cfg.GetProfile("missing"))
}

func TestLoadConfigExplicitFalse(t *testing.T) {
	path := writeConfig(t, "defaults:\n  use_suppressions: false\n")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.False(t, cfg.Defaults.UseSuppressions)
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad yaml", "defaults: [", "error parsing"},
		{"negative score", "analysis:\n  min_score: -1\n", "min_score"},
		{"small chunks", "analysis:\n  chunk_size: 10\n", "chunk_size"},
		{"overlap too big", "analysis:\n  chunk_size: 100\n  chunk_overlap: 100\n", "chunk_overlap"},
		{"negative workers", "analysis:\n  workers: -2\n", "workers"},
		{"bad port", "web:\n  port: http\n", "web.port"},
		{"negative cache", "web:\n  cache_size: -1\n", "cache_size"},
		{"bad severity", "defaults:\n  severity: critical\n", "unknown severity"},
		{"bad profile severity", "profiles:\n  p:\n    severity: urgent\n", "profile 'p'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestEffectiveAnalysis(t *testing.T) {
	cfg := Default()

	assert.Equal(t, cfg.Analysis, cfg.EffectiveAnalysis(nil))

	strict := cfg.EffectiveAnalysis(cfg.GetProfile("strict"))
	assert.Equal(t, 18.0, strict.MinScore)
	assert.False(t, strict.PatternFallback)

	thorough := cfg.EffectiveAnalysis(cfg.GetProfile("thorough"))
	assert.Equal(t, 10.0, thorough.MinScore)
	assert.True(t, thorough.PatternFallback)
}

func TestValidateSeverityList(t *testing.T) {
	assert.NoError(t, ValidateSeverityList(""))
	assert.NoError(t, ValidateSeverityList("all"))
	assert.NoError(t, ValidateSeverityList("HIGH, warning"))
	assert.Error(t, ValidateSeverityList("high,severe"))
}

func TestFindConfigFileInWorkingDir(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	require.NoError(t, os.WriteFile(".lease-scan.yaml", []byte("defaults:\n  format: csv\n"), 0600))
	assert.Equal(t, ".lease-scan.yaml", FindConfigFile())

	require.NoError(t, os.WriteFile("lease-scan.yaml", []byte("defaults:\n  format: yaml\n"), 0600))
	assert.Equal(t, "lease-scan.yaml", FindConfigFile())
	assert.Equal(t, "yaml", LoadConfigOrDefault("").Defaults.Format)
}
