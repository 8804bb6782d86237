// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package paths

import (
	"os"
	"path/filepath"
)

// ConfigDirEnv overrides the configuration directory on every platform
const ConfigDirEnv = "LEASE_SCAN_CONFIG_DIR"

// GetConfigDir returns the lease-scan configuration directory.
// Falls back to ./.lease-scan when no user config dir is available.
func GetConfigDir() string {
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return dir
	}
	if base, err := os.UserConfigDir(); err == nil && base != "" {
		return filepath.Join(base, "lease-scan")
	}
	return ".lease-scan"
}

// GetConfigFile returns the path to the main config file
func GetConfigFile() string {
	return filepath.Join(GetConfigDir(), "config.yaml")
}

// GetSuppressionsFile returns the path to the suppressions file
func GetSuppressionsFile() string {
	return filepath.Join(GetConfigDir(), "suppressions.yaml")
}
