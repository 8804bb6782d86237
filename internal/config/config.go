// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"lease-scan/internal/chunker"
	"lease-scan/internal/detector"
	"lease-scan/internal/paths"
	"lease-scan/internal/scoring"

	"gopkg.in/yaml.v3"
)

// Defaults are the CLI settings a config file can preset
type Defaults struct {
	Format          string `yaml:"format"`
	Jurisdiction    string `yaml:"jurisdiction"`
	Severity        string `yaml:"severity"`
	Verbose         bool   `yaml:"verbose"`
	Debug           bool   `yaml:"debug"`
	NoColor         bool   `yaml:"no_color"`
	ShowText        bool   `yaml:"show_text"`
	UseSuppressions bool   `yaml:"use_suppressions"`
	Suppressions    string `yaml:"suppressions_file"`
}

// Analysis tunes the rule matcher
type Analysis struct {
	MinScore        float64 `yaml:"min_score"`
	ChunkSize       int     `yaml:"chunk_size"`
	ChunkOverlap    int     `yaml:"chunk_overlap"`
	Workers         int     `yaml:"workers"`
	PatternFallback bool    `yaml:"pattern_fallback"`
}

// Web configures the HTTP API
type Web struct {
	Port        string `yaml:"port"`
	CacheSize   int    `yaml:"cache_size"`
	MaxUploadMB int    `yaml:"max_upload_mb"`
}

// Logging configures the structured logger
type Logging struct {
	JSON  bool   `yaml:"json"`
	Level string `yaml:"level"`
}

// Config represents the application configuration
type Config struct {
	Defaults Defaults           `yaml:"defaults"`
	Analysis Analysis           `yaml:"analysis"`
	Web      Web                `yaml:"web"`
	Logging  Logging            `yaml:"logging"`
	Profiles map[string]Profile `yaml:"profiles"`
}

// Profile is a named set of overrides. Empty strings and zero numbers leave
// the base value alone; true booleans switch a setting on.
type Profile struct {
	Description  string `yaml:"description"`
	Format       string `yaml:"format"`
	Jurisdiction string `yaml:"jurisdiction"`
	Severity     string `yaml:"severity"`
	Verbose      bool   `yaml:"verbose"`
	Debug        bool   `yaml:"debug"`
	NoColor      bool   `yaml:"no_color"`
	ShowText     bool   `yaml:"show_text"`

	MinScore        float64 `yaml:"min_score"`
	Workers         int     `yaml:"workers"`
	PatternFallback bool    `yaml:"pattern_fallback"`
}

// Default returns the built-in configuration
func Default() *Config {
	config := &Config{
		Profiles: make(map[string]Profile),
	}

	config.Defaults.Format = "text"
	config.Defaults.Jurisdiction = "auto"
	config.Defaults.Severity = "all"
	config.Defaults.UseSuppressions = true

	config.Analysis.MinScore = scoring.DefaultMinScore
	config.Analysis.ChunkSize = chunker.DefaultMaxSize
	config.Analysis.ChunkOverlap = chunker.DefaultOverlap
	config.Analysis.Workers = 0
	config.Analysis.PatternFallback = false

	config.Web.Port = "8080"
	config.Web.CacheSize = 128
	config.Web.MaxUploadMB = 32

	config.Logging.Level = "info"

	config.Profiles["strict"] = Profile{
		Description: "Only high-severity flags backed by strong evidence",
		Severity:    "high",
		MinScore:    scoring.HighConfidence,
	}
	config.Profiles["thorough"] = Profile{
		Description:     "Every flag, with explanations and the plain pattern checks",
		Verbose:         true,
		PatternFallback: true,
	}

	return config
}

// LoadConfig loads configuration from the specified file path. An empty
// path returns the built-in defaults.
func LoadConfig(configPath string) (*Config, error) {
	config := Default()
	if configPath == "" {
		return config, nil
	}

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	defaultUseSuppressions := config.Defaults.UseSuppressions

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	// yaml leaves absent bools false; restore the ones that default to true
	if !containsField(data, "defaults", "use_suppressions") {
		config.Defaults.UseSuppressions = defaultUseSuppressions
	}
	if config.Profiles == nil {
		config.Profiles = make(map[string]Profile)
	}

	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

// FindConfigFile looks for a configuration file in the standard locations
// and returns "" when there is none
func FindConfigFile() string {
	for _, name := range []string{"lease-scan.yaml", "lease-scan.yml", ".lease-scan.yaml", ".lease-scan.yml"} {
		if fileExists(name) {
			return name
		}
	}

	if standardConfig := paths.GetConfigFile(); fileExists(standardConfig) {
		return standardConfig
	}

	home, _ := os.UserHomeDir()

	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" && home != "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	if xdgConfig != "" {
		if f := filepath.Join(xdgConfig, "lease-scan", "config.yaml"); fileExists(f) {
			return f
		}
	}

	if home != "" {
		if f := filepath.Join(home, ".lease-scan.yaml"); fileExists(f) {
			return f
		}
	}
	return ""
}

// fileExists checks if a file exists and is not a directory
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// ListProfiles returns the available profile names, sorted
func (c *Config) ListProfiles() []string {
	profiles := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		profiles = append(profiles, name)
	}
	sort.Strings(profiles)
	return profiles
}

// GetProfile returns a profile by name, or nil if not found
func (c *Config) GetProfile(name string) *Profile {
	if profile, exists := c.Profiles[name]; exists {
		return &profile
	}
	return nil
}

// EffectiveAnalysis merges a profile's analysis overrides over the
// configured analysis settings. A nil profile returns them unchanged.
func (c *Config) EffectiveAnalysis(profile *Profile) Analysis {
	analysis := c.Analysis
	if profile == nil {
		return analysis
	}
	if profile.MinScore > 0 {
		analysis.MinScore = profile.MinScore
	}
	if profile.Workers > 0 {
		analysis.Workers = profile.Workers
	}
	if profile.PatternFallback {
		analysis.PatternFallback = true
	}
	return analysis
}

// containsField checks if a nested field exists in the YAML data
func containsField(data []byte, path ...string) bool {
	var yamlData map[string]interface{}
	if err := yaml.Unmarshal(data, &yamlData); err != nil {
		return false
	}

	current := yamlData
	for i, key := range path {
		if i == len(path)-1 {
			_, exists := current[key]
			return exists
		}
		next, ok := current[key].(map[string]interface{})
		if !ok {
			return false
		}
		current = next
	}
	return false
}

// ValidateConfig checks value ranges and names
func ValidateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("configuration cannot be nil")
	}

	if err := validateAnalysis(config.Analysis); err != nil {
		return err
	}

	port, err := strconv.Atoi(config.Web.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("web.port must be a number between 1 and 65535, got %q", config.Web.Port)
	}
	if config.Web.CacheSize < 0 {
		return fmt.Errorf("web.cache_size must be >= 0, got %d", config.Web.CacheSize)
	}
	if config.Web.MaxUploadMB < 1 {
		return fmt.Errorf("web.max_upload_mb must be >= 1, got %d", config.Web.MaxUploadMB)
	}

	if err := ValidateSeverityList(config.Defaults.Severity); err != nil {
		return fmt.Errorf("defaults.severity: %w", err)
	}

	for name, profile := range config.Profiles {
		if profile.MinScore < 0 {
			return fmt.Errorf("profile '%s': min_score must be >= 0", name)
		}
		if profile.Workers < 0 {
			return fmt.Errorf("profile '%s': workers must be >= 0", name)
		}
		if profile.Severity != "" {
			if err := ValidateSeverityList(profile.Severity); err != nil {
				return fmt.Errorf("profile '%s': %w", name, err)
			}
		}
	}
	return nil
}

func validateAnalysis(a Analysis) error {
	if a.MinScore < 0 {
		return fmt.Errorf("analysis.min_score must be >= 0, got %v", a.MinScore)
	}
	if a.ChunkSize < 50 {
		return fmt.Errorf("analysis.chunk_size must be >= 50, got %d", a.ChunkSize)
	}
	if a.ChunkOverlap < 0 || a.ChunkOverlap >= a.ChunkSize {
		return fmt.Errorf("analysis.chunk_overlap must be in [0, chunk_size), got %d", a.ChunkOverlap)
	}
	if a.Workers < 0 {
		return fmt.Errorf("analysis.workers must be >= 0, got %d", a.Workers)
	}
	return nil
}

// ValidateSeverityList accepts "all" or a comma-separated list of severities
func ValidateSeverityList(list string) error {
	if list == "" || strings.EqualFold(list, "all") {
		return nil
	}
	for _, part := range strings.Split(list, ",") {
		if _, ok := detector.ParseSeverity(part); !ok {
			return fmt.Errorf("unknown severity %q (use high, warning, info or all)", strings.TrimSpace(part))
		}
	}
	return nil
}

// LoadConfigOrDefault loads configFile, or searches the standard locations
// when it is empty, and falls back to defaults if loading fails. Shared by
// the CLI and the web server.
func LoadConfigOrDefault(configFile string) *Config {
	configPath := configFile
	if configPath == "" {
		configPath = FindConfigFile()
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		return Default()
	}
	return cfg
}
