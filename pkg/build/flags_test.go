// SPDX-License-Identifier: MIT
package build

import (
	"os"
	"strings"
	"testing"
)

var (
	origName    string
	origTime    string
	origCommit  string
	origVersion string
	origInfo    Info
)

func TestMain(m *testing.M) {
	origName = buildName
	origTime = buildTime
	origCommit = buildCommit
	origVersion = buildVersion
	origInfo = *buildInfo

	exitCode := m.Run()

	buildName = origName
	buildTime = origTime
	buildCommit = origCommit
	buildVersion = origVersion
	*buildInfo = origInfo

	os.Exit(exitCode)
}

func TestInitialize(t *testing.T) {
	tests := []struct {
		name        string
		buildName   string
		buildTime   string
		buildCommit string
		buildVer    string
		wantErrMsg  string
	}{
		{"Missing BuildName", "", "2025-04-13", "abcdef123", "v1.0.0", "BuildName is not set"},
		{"Missing BuildTime", "testapp", "", "abcdef123", "v1.0.0", "BuildTime is not set"},
		{"Missing BuildCommit", "testapp", "2025-04-13", "", "v1.0.0", "BuildCommit is not set"},
		{"Missing BuildVersion", "testapp", "2025-04-13", "abcdef123", "", "BuildVersion is not set"},
		{"Success Case", "testapp", "2025-04-13", "abcdef123", "v1.0.0", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			*buildInfo = origInfo
			buildName = tt.buildName
			buildTime = tt.buildTime
			buildCommit = tt.buildCommit
			buildVersion = tt.buildVer

			err := Initialize()

			if tt.wantErrMsg != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErrMsg) {
					t.Errorf("Initialize() error = %v, want %q", err, tt.wantErrMsg)
				}
				return
			}
			if err != nil {
				t.Fatalf("Initialize() unexpected error: %v", err)
			}

			info := GetBuildFlags()
			if info.Name != tt.buildName || info.Time != tt.buildTime ||
				info.Commit != tt.buildCommit || info.Version != tt.buildVer {
				t.Errorf("GetBuildFlags() = %+v", info)
			}
		})
	}
}

func TestInitializeKeepsPlaceholders(t *testing.T) {
	*buildInfo = origInfo
	buildName, buildTime, buildCommit, buildVersion = "", "", "", ""

	if err := Initialize(); err == nil {
		t.Fatal("Initialize() expected error for unset flags")
	}
	info := GetBuildFlags()
	if info.Name != "haptic" || info.Version != "dev" {
		t.Errorf("placeholders replaced: %+v", info)
	}
	if !strings.Contains(info.String(), "haptic dev") {
		t.Errorf("String() = %q", info.String())
	}
}
