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
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"

	"github.com/walteh/multichange/pkg/session"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 📚 Config represents the complete configuration
type Config struct {
	Rules         string   `json:"rules,omitempty" yaml:"rules,omitempty"`                   // Rule list file used instead of the session
	State         string   `json:"state,omitempty" yaml:"state,omitempty"`                   // Session state file
	Root          string   `json:"root,omitempty" yaml:"root,omitempty"`                     // Directory target globs are matched under
	Targets       []string `json:"targets,omitempty" yaml:"targets,omitempty"`               // Globs naming the visible documents
	Ignore        []string `json:"ignore,omitempty" yaml:"ignore,omitempty"`                 // Globs removed from the visible documents
	MultiDocument bool     `json:"multi_document,omitempty" yaml:"multi_document,omitempty"` // Apply to every visible document by default
	Async         bool     `json:"async,omitempty" yaml:"async,omitempty"`                   // Transform visible documents in parallel
	Backup        bool     `json:"backup,omitempty" yaml:"backup,omitempty"`                 // Keep a .bak copy of rewritten documents
	UntitledDir   string   `json:"untitled_dir,omitempty" yaml:"untitled_dir,omitempty"`     // Where untitled documents are created

	location string
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	_ = cfg.Validate()
	return cfg
}

// Location returns the file the config was loaded from, if any.
func (cfg *Config) Location() string {
	return cfg.location
}

// 🔍 Validate checks if the configuration is valid and fills in defaults
func (cfg *Config) Validate() error {
	for _, pattern := range append(append([]string{}, cfg.Targets...), cfg.Ignore...) {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("invalid glob pattern %q", pattern)
		}
	}

	if cfg.Root == "" {
		cfg.Root = "."
	}
	if cfg.State == "" {
		cfg.State = session.DefaultFileName
	}

	cfg.Root = filepath.Clean(cfg.Root)
	cfg.State = filepath.Clean(cfg.State)
	if cfg.Rules != "" {
		cfg.Rules = filepath.Clean(cfg.Rules)
	}
	if cfg.UntitledDir != "" {
		cfg.UntitledDir = filepath.Clean(cfg.UntitledDir)
	}

	return nil
}

// resolve makes relative paths relative to the directory holding the config.
func (cfg *Config) resolve(dir string) {
	if dir == "" || dir == "." {
		return
	}
	join := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	cfg.Rules = join(cfg.Rules)
	cfg.State = join(cfg.State)
	cfg.Root = join(cfg.Root)
	cfg.UntitledDir = join(cfg.UntitledDir)
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	source := "session " + cfg.State
	if cfg.Rules != "" {
		source = "rules " + cfg.Rules
	}
	mode := "active"
	if cfg.MultiDocument {
		mode = "multi"
	}
	return fmt.Sprintf("%s -> %s [%s] (%s)", source, cfg.Root, strings.Join(cfg.Targets, ","), mode)
}

// 🔧 YAMLParser implements the Parser interface for YAML files
type YAMLParser struct{}

func init() {
	Register(&YAMLParser{})
}

func (p *YAMLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml")
}

func (p *YAMLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(strings.NewReader(string(data)))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}
	return &cfg, nil
}
