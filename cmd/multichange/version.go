// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"encoding/json"
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/walteh/multichange/pkg/session"
)

// VersionInfo represents the version information of the binary
type VersionInfo struct {
	Version      string `json:"version"`
	GoVersion    string `json:"go_version"`
	Platform     string `json:"platform"`
	VCS          string `json:"vcs,omitempty"`
	Revision     string `json:"revision,omitempty"`
	Time         string `json:"time,omitempty"`
	Modified     bool   `json:"modified"`
	StateSchema  string `json:"state_schema"`
	RegexEngine  string `json:"regex_engine"`
	RegexVersion string `json:"regex_version"`
}

// GetVersionInfo returns the version information from build info
func GetVersionInfo() *VersionInfo {
	info := &VersionInfo{
		Version:      "dev",
		GoVersion:    runtime.Version(),
		Platform:     fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		StateSchema:  session.SchemaVersion,
		RegexEngine:  regexp2Module,
		RegexVersion: "unknown",
	}

	if buildInfo, ok := debug.ReadBuildInfo(); ok {
		if buildInfo.Main.Version != "" {
			info.Version = buildInfo.Main.Version
		}
		for _, dep := range buildInfo.Deps {
			if dep.Path == regexp2Module {
				info.RegexVersion = dep.Version
			}
		}
		for _, setting := range buildInfo.Settings {
			switch setting.Key {
			case "vcs":
				info.VCS = setting.Value
			case "vcs.revision":
				info.Revision = setting.Value
			case "vcs.time":
				info.Time = setting.Value
			case "vcs.modified":
				info.Modified = setting.Value == "true"
			}
		}
	}

	return info
}

// FormatVersion returns a formatted string of version information
func (info *VersionInfo) FormatVersion() string {
	modified := ""
	if info.Modified {
		modified = " (modified)"
	}
	revision := info.Revision
	if info.VCS != "" && revision != "" {
		revision = info.VCS + " " + revision
	}
	return fmt.Sprintf(`🚀 multichange version info:
Version:   %s
Revision:  %s%s
Built:     %s
Go:        %s
Platform:  %s
Regex:     %s %s (ECMAScript)
State:     schema %s
`, info.Version, revision, modified, info.Time, info.GoVersion, info.Platform,
		info.RegexEngine, info.RegexVersion, info.StateSchema)
}

// regexp2Module is the engine rules compile with
const regexp2Module = "github.com/dlclark/regexp2"

func newVersionCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := GetVersionInfo()
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}
			_, err := fmt.Fprint(cmd.OutOrStdout(), info.FormatVersion())
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print version information as JSON")

	return cmd
}
