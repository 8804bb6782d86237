// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package suppressions

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"lease-scan/internal/detector"
	"lease-scan/internal/paths"

	"gopkg.in/yaml.v3"
)

// DefaultExpiry is how long a new suppression lasts when none is given
const DefaultExpiry = 7 * 24 * time.Hour

// SuppressionRule accepts one specific flag
type SuppressionRule struct {
	ID         string            `yaml:"id"`
	Hash       string            `yaml:"hash"`
	Reason     string            `yaml:"reason"`
	Enabled    bool              `yaml:"enabled"`
	CreatedBy  string            `yaml:"created_by,omitempty"`
	CreatedAt  time.Time         `yaml:"created_at"`
	LastSeenAt *time.Time        `yaml:"last_seen_at,omitempty"`
	ExpiresAt  *time.Time        `yaml:"expires_at,omitempty"`
	Metadata   map[string]string `yaml:"metadata,omitempty"`
}

// SuppressionConfig represents the suppression configuration file
type SuppressionConfig struct {
	Version string            `yaml:"version"`
	Rules   []SuppressionRule `yaml:"rules"`
}

// SuppressionManager loads, matches and persists suppressions. Safe for
// concurrent use.
type SuppressionManager struct {
	mu         sync.RWMutex
	configPath string
	config     *SuppressionConfig
	enabled    bool
}

// NewSuppressionManager loads configPath, or the default suppressions file
// when empty. A missing or unreadable file yields an empty rule set.
func NewSuppressionManager(configPath string) *SuppressionManager {
	if configPath == "" {
		configPath = paths.GetSuppressionsFile()
	}

	manager := &SuppressionManager{
		configPath: configPath,
		enabled:    true,
	}
	manager.loadConfig()
	return manager
}

func emptyConfig() *SuppressionConfig {
	return &SuppressionConfig{Version: "1.0", Rules: []SuppressionRule{}}
}

func (sm *SuppressionManager) loadConfig() {
	data, err := os.ReadFile(filepath.Clean(sm.configPath))
	if err != nil {
		sm.config = emptyConfig()
		return
	}

	var config SuppressionConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		sm.config = emptyConfig()
		return
	}
	if config.Rules == nil {
		config.Rules = []SuppressionRule{}
	}
	sm.config = &config
}

// FlagHash identifies a flag by type, citing jurisdiction and normalized
// excerpt, so the same clause hashes the same across runs and files
func FlagHash(flag detector.RiskFlag) string {
	jurisdiction := ""
	if flag.LegalReference != nil {
		jurisdiction = strings.ToLower(flag.LegalReference.Jurisdiction)
	}
	excerpt := strings.Join(strings.Fields(strings.ToLower(flag.Excerpt)), " ")

	sum := sha256.Sum256([]byte(strings.Join([]string{flag.Type, jurisdiction, excerpt}, "|")))
	return fmt.Sprintf("%x", sum)
}

func shortHash(data string) string {
	if data == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", sum)[:16]
}

// IsSuppressed reports whether an enabled, unexpired rule covers flag
func (sm *SuppressionManager) IsSuppressed(flag detector.RiskFlag) (bool, *SuppressionRule) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.lookup(FlagHash(flag), time.Now())
}

func (sm *SuppressionManager) lookup(hash string, now time.Time) (bool, *SuppressionRule) {
	if !sm.enabled || sm.config == nil {
		return false, nil
	}
	for _, rule := range sm.config.Rules {
		if rule.Hash != hash || !rule.Enabled {
			continue
		}
		if rule.ExpiresAt != nil && now.After(*rule.ExpiresAt) {
			continue
		}
		r := rule
		return true, &r
	}
	return false, nil
}

// Apply splits flags into those still reported and those suppressed.
// It never adds flags.
func (sm *SuppressionManager) Apply(flags []detector.RiskFlag) ([]detector.RiskFlag, []detector.SuppressedFlag) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	now := time.Now()
	kept := make([]detector.RiskFlag, 0, len(flags))
	var suppressed []detector.SuppressedFlag
	for _, flag := range flags {
		if ok, rule := sm.lookup(FlagHash(flag), now); ok {
			suppressed = append(suppressed, detector.SuppressedFlag{
				Flag:         flag,
				SuppressedBy: rule.ID,
				RuleReason:   rule.Reason,
				ExpiresAt:    rule.ExpiresAt,
			})
			continue
		}
		kept = append(kept, flag)
	}
	return kept, suppressed
}

func (sm *SuppressionManager) nextID(offset int) string {
	maxID := 0
	for _, rule := range sm.config.Rules {
		var num int
		if _, err := fmt.Sscanf(rule.ID, "SUP-%08d", &num); err == nil && num > maxID {
			maxID = num
		}
	}
	return fmt.Sprintf("SUP-%08d", maxID+offset+1)
}

func newRule(id, hash, reason string, enabled bool, flag detector.RiskFlag, now time.Time, expiresAt *time.Time) SuppressionRule {
	if expiresAt == nil {
		expiry := now.Add(DefaultExpiry)
		expiresAt = &expiry
	}
	jurisdiction := ""
	if flag.LegalReference != nil {
		jurisdiction = flag.LegalReference.Jurisdiction
	}
	return SuppressionRule{
		ID:         id,
		Hash:       hash,
		Reason:     reason,
		Enabled:    enabled,
		CreatedAt:  now,
		LastSeenAt: &now,
		ExpiresAt:  expiresAt,
		Metadata: map[string]string{
			"flag_type":    flag.Type,
			"jurisdiction": jurisdiction,
			"severity":     string(flag.Severity),
			"excerpt_hash": shortHash(flag.Excerpt),
		},
	}
}

// AddSuppression accepts one flag; expiresAt nil means DefaultExpiry from now
func (sm *SuppressionManager) AddSuppression(flag detector.RiskFlag, reason, createdBy string, expiresAt *time.Time) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	hash := FlagHash(flag)
	for _, rule := range sm.config.Rules {
		if rule.Hash == hash {
			return fmt.Errorf("suppression rule already exists for this flag")
		}
	}

	rule := newRule(sm.nextID(0), hash, reason, true, flag, time.Now(), expiresAt)
	rule.CreatedBy = createdBy
	sm.config.Rules = append(sm.config.Rules, rule)
	return sm.saveConfig()
}

// GenerateSuppressionRules records a rule for every flag, refreshing
// last_seen_at on rules that already exist
func (sm *SuppressionManager) GenerateSuppressionRules(flags []detector.RiskFlag, reason string, enabled bool) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	existing := make(map[string]int, len(sm.config.Rules))
	for i, rule := range sm.config.Rules {
		existing[rule.Hash] = i
	}

	now := time.Now()
	added, updated := 0, 0
	for _, flag := range flags {
		hash := FlagHash(flag)
		if i, ok := existing[hash]; ok {
			sm.config.Rules[i].LastSeenAt = &now
			updated++
			continue
		}
		rule := newRule(sm.nextID(0), hash, reason, enabled, flag, now, nil)
		sm.config.Rules = append(sm.config.Rules, rule)
		existing[hash] = len(sm.config.Rules) - 1
		added++
	}

	if added > 0 || updated > 0 {
		return sm.saveConfig()
	}
	return nil
}

// RemoveSuppression removes a suppression rule by ID
func (sm *SuppressionManager) RemoveSuppression(id string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	for i, rule := range sm.config.Rules {
		if rule.ID == id {
			sm.config.Rules = append(sm.config.Rules[:i], sm.config.Rules[i+1:]...)
			return sm.saveConfig()
		}
	}
	return fmt.Errorf("suppression rule with ID %s not found", id)
}

// EnableSuppressionByHash enables a rule by hash, optionally replacing its reason
func (sm *SuppressionManager) EnableSuppressionByHash(hash, reason string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	for i := range sm.config.Rules {
		if sm.config.Rules[i].Hash == hash {
			sm.config.Rules[i].Enabled = true
			if reason != "" {
				sm.config.Rules[i].Reason = reason
			}
			now := time.Now()
			sm.config.Rules[i].LastSeenAt = &now
			return sm.saveConfig()
		}
	}
	return fmt.Errorf("suppression rule with hash %s not found", hash)
}

// DisableSuppressionByID disables a suppression rule by ID
func (sm *SuppressionManager) DisableSuppressionByID(id string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	for i := range sm.config.Rules {
		if sm.config.Rules[i].ID == id {
			sm.config.Rules[i].Enabled = false
			return sm.saveConfig()
		}
	}
	return fmt.Errorf("suppression rule with ID %s not found", id)
}

// ListSuppressions returns a copy of all suppression rules
func (sm *SuppressionManager) ListSuppressions() []SuppressionRule {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return append([]SuppressionRule{}, sm.config.Rules...)
}

// CleanupExpired removes expired rules and returns how many were removed
func (sm *SuppressionManager) CleanupExpired() (int, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	now := time.Now()
	active := make([]SuppressionRule, 0, len(sm.config.Rules))
	for _, rule := range sm.config.Rules {
		if rule.ExpiresAt == nil || now.Before(*rule.ExpiresAt) {
			active = append(active, rule)
		}
	}

	removed := len(sm.config.Rules) - len(active)
	sm.config.Rules = active
	if removed > 0 {
		return removed, sm.saveConfig()
	}
	return 0, nil
}

// saveConfig writes the rules with owner-only permissions; callers hold mu
func (sm *SuppressionManager) saveConfig() error {
	data, err := yaml.Marshal(sm.config)
	if err != nil {
		return fmt.Errorf("failed to marshal suppression config: %w", err)
	}

	if dir := filepath.Dir(sm.configPath); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(sm.configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write suppression config: %w", err)
	}
	return nil
}

// SetEnabled enables or disables the suppression manager
func (sm *SuppressionManager) SetEnabled(enabled bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.enabled = enabled
}

// IsEnabled returns whether the suppression manager is enabled
func (sm *SuppressionManager) IsEnabled() bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.enabled
}

// GetConfigPath returns the path to the suppression config file
func (sm *SuppressionManager) GetConfigPath() string {
	return sm.configPath
}
