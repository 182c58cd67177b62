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

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/multichange/pkg/session"
)

func setupTestLogger(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.TestWriter{T: t}).With().Timestamp().Logger()
	return logger.WithContext(context.Background())
}

func TestLoad(t *testing.T) {
	t.Setenv("MULTICHANGE_TEST_ROOT", "/srv/project")

	tests := []struct {
		name        string
		file        string
		config      string
		wantErr     bool
		errContains string
		check       func(t *testing.T, dir string, cfg *Config)
	}{
		{
			name: "valid_yaml",
			file: ".multichange.yaml",
			config: `
rules: rules.json
root: src
targets:
  - "**/*.go"
  - "docs/*.md"
ignore:
  - "vendor/**"
multi_document: true
async: true
backup: true
untitled_dir: out
`,
			check: func(t *testing.T, dir string, cfg *Config) {
				assert.Equal(t, filepath.Join(dir, "rules.json"), cfg.Rules, "rules should be relative to the config")
				assert.Equal(t, filepath.Join(dir, "src"), cfg.Root, "root should be relative to the config")
				assert.Equal(t, []string{"**/*.go", "docs/*.md"}, cfg.Targets)
				assert.Equal(t, []string{"vendor/**"}, cfg.Ignore)
				assert.True(t, cfg.MultiDocument)
				assert.True(t, cfg.Async)
				assert.True(t, cfg.Backup)
				assert.Equal(t, filepath.Join(dir, "out"), cfg.UntitledDir)
				assert.Equal(t, filepath.Join(dir, session.DefaultFileName), cfg.State, "state should default next to the config")
			},
		},
		{
			name:   "minimal_json",
			file:   ".multichange.json",
			config: `{"targets": ["*.txt"]}`,
			check: func(t *testing.T, dir string, cfg *Config) {
				assert.Equal(t, dir, cfg.Root)
				assert.Equal(t, []string{"*.txt"}, cfg.Targets)
				assert.Empty(t, cfg.Rules)
				assert.False(t, cfg.MultiDocument)
			},
		},
		{
			name: "valid_hcl",
			file: ".multichange.hcl",
			config: `
state          = "/tmp/state.json"
multi_document = true

targets {
  root    = env.MULTICHANGE_TEST_ROOT
  include = ["**/*.md"]
  ignore  = ["node_modules/**"]
}
`,
			check: func(t *testing.T, dir string, cfg *Config) {
				assert.Equal(t, "/srv/project", cfg.Root, "absolute paths are kept")
				assert.Equal(t, "/tmp/state.json", cfg.State)
				assert.Equal(t, []string{"**/*.md"}, cfg.Targets)
				assert.Equal(t, []string{"node_modules/**"}, cfg.Ignore)
				assert.True(t, cfg.MultiDocument)
			},
		},
		{
			name:        "unknown_yaml_field",
			file:        ".multichange.yaml",
			config:      "destination: /tmp\n",
			wantErr:     true,
			errContains: "parsing YAML",
		},
		{
			name:        "unknown_json_field",
			file:        ".multichange.json",
			config:      `{"provider": {}}`,
			wantErr:     true,
			errContains: "parsing JSON",
		},
		{
			name:   "json_with_schema_key",
			file:   ".multichange.json",
			config: `{"$schema": "https://example.com/multichange.json", "backup": true}`,
			check: func(t *testing.T, dir string, cfg *Config) {
				assert.True(t, cfg.Backup)
			},
		},
		{
			name:        "json_rule_list_is_not_a_config",
			file:        "rules.json",
			config:      ` [{"matcher": "a"}]`,
			wantErr:     true,
			errContains: "file holds a rule list",
		},
		{
			name:        "invalid_hcl",
			file:        ".multichange.hcl",
			config:      `targets {`,
			wantErr:     true,
			errContains: "parsing HCL",
		},
		{
			name:        "unknown_hcl_attribute",
			file:        ".multichange.hcl",
			config:      `clean = true`,
			wantErr:     true,
			errContains: "decoding HCL",
		},
		{
			name:        "invalid_glob",
			file:        ".multichange.json",
			config:      `{"targets": ["[unterminated"]}`,
			wantErr:     true,
			errContains: "invalid glob pattern",
		},
		{
			name:        "unsupported_extension",
			file:        "config.toml",
			config:      `rules = "x"`,
			wantErr:     true,
			errContains: "no parser found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := setupTestLogger(t)
			dir := t.TempDir()
			path := filepath.Join(dir, tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.config), 0644))

			cfg, err := Load(ctx, path)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, path, cfg.Location())
			tt.check(t, dir, cfg)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(setupTestLogger(t), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestLoadOrDefault(t *testing.T) {
	ctx := setupTestLogger(t)

	t.Run("no_file_uses_defaults", func(t *testing.T) {
		t.Chdir(t.TempDir())

		cfg, err := LoadOrDefault(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, ".", cfg.Root)
		assert.Equal(t, session.DefaultFileName, cfg.State)
		assert.Empty(t, cfg.Location())
	})

	t.Run("finds_default_file", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)
		require.NoError(t, os.WriteFile(".multichange.yml", []byte("backup: true\n"), 0644))

		cfg, err := LoadOrDefault(ctx, "")
		require.NoError(t, err)
		assert.True(t, cfg.Backup)
		assert.Equal(t, ".multichange.yml", cfg.Location())
	})

	t.Run("explicit_missing_file_fails", func(t *testing.T) {
		_, err := LoadOrDefault(ctx, filepath.Join(t.TempDir(), ".multichange.hcl"))
		require.Error(t, err)
	})
}

func TestFind(t *testing.T) {
	dir := t.TempDir()
	_, ok := Find(dir)
	assert.False(t, ok)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".multichange.json"), []byte("{}"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".multichange.hcl"), []byte(""), 0644))

	path, ok := Find(dir)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, ".multichange.hcl"), path, "hcl takes precedence")
}

func TestConfigString(t *testing.T) {
	cfg := Default()
	cfg.Targets = []string{"*.go"}
	assert.Equal(t, "session .multichange.state.json -> . [*.go] (active)", cfg.String())

	cfg.Rules = "rules.json"
	cfg.MultiDocument = true
	assert.Equal(t, "rules rules.json -> . [*.go] (multi)", cfg.String())
}
