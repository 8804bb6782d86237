// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
)

// Set at release time with
// -ldflags "-X lease-scan/internal/version.Version=... -X ...GitCommit=... -X ...BuildDate=..."
var (
	Version   = "0.0.0-development"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

const (
	product        = "lease-scan"
	develVersion   = "0.0.0-development"
	unknown        = "unknown"
	shortCommitLen = 12
)

// BuildInfo describes the running binary. It is reported by --version and by
// the API health endpoint.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	Modified  bool   `json:"modified,omitempty"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

var (
	once   sync.Once
	cached BuildInfo
)

// Get returns the build info. Values injected with -ldflags win; anything
// left at its default is filled from the module and VCS data the Go
// toolchain embeds (go install, go build inside a checkout).
func Get() BuildInfo {
	once.Do(func() {
		embedded, _ := debug.ReadBuildInfo()
		cached = resolve(Version, GitCommit, BuildDate, embedded)
	})
	return cached
}

func resolve(ver, commit, date string, embedded *debug.BuildInfo) BuildInfo {
	info := BuildInfo{
		Version:   ver,
		Commit:    commit,
		BuildDate: date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if embedded == nil {
		return info
	}

	if info.Version == develVersion && embedded.Main.Version != "" && embedded.Main.Version != "(devel)" {
		info.Version = embedded.Main.Version
	}
	for _, setting := range embedded.Settings {
		switch setting.Key {
		case "vcs.revision":
			if info.Commit == unknown && setting.Value != "" {
				info.Commit = setting.Value
				if len(info.Commit) > shortCommitLen {
					info.Commit = info.Commit[:shortCommitLen]
				}
			}
		case "vcs.time":
			if info.BuildDate == unknown && setting.Value != "" {
				info.BuildDate = setting.Value
			}
		case "vcs.modified":
			info.Modified = setting.Value == "true"
		}
	}
	return info
}

// String is the one-line form printed by --version
func (b BuildInfo) String() string {
	commit := b.Commit
	if b.Modified {
		commit += "-dirty"
	}
	return fmt.Sprintf("%s %s (commit: %s, built: %s, go: %s, platform: %s)",
		product, b.Version, commit, b.BuildDate, b.GoVersion, b.Platform)
}

// ServerHeader is the value the HTTP API sends in its Server header
func (b BuildInfo) ServerHeader() string {
	return product + "/" + b.Version
}
