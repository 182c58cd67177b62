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
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

// 📝 Parse parses the config from HCL. Expressions can read the process
// environment through the env object, e.g. root = env.HOME.
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": environment(),
		},
	}

	type hclTargets struct {
		Include []string `hcl:"include,optional"`
		Ignore  []string `hcl:"ignore,optional"`
		Root    string   `hcl:"root,optional"`
	}

	type hclConfig struct {
		Rules         string      `hcl:"rules,optional"`
		State         string      `hcl:"state,optional"`
		MultiDocument bool        `hcl:"multi_document,optional"`
		Async         bool        `hcl:"async,optional"`
		Backup        bool        `hcl:"backup,optional"`
		UntitledDir   string      `hcl:"untitled_dir,optional"`
		Targets       *hclTargets `hcl:"targets,block"`
	}

	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	cfg := &Config{
		Rules:         hclCfg.Rules,
		State:         hclCfg.State,
		MultiDocument: hclCfg.MultiDocument,
		Async:         hclCfg.Async,
		Backup:        hclCfg.Backup,
		UntitledDir:   hclCfg.UntitledDir,
	}
	if hclCfg.Targets != nil {
		cfg.Root = hclCfg.Targets.Root
		cfg.Targets = hclCfg.Targets.Include
		cfg.Ignore = hclCfg.Targets.Ignore
	}

	return cfg, nil
}

func environment() cty.Value {
	vars := map[string]cty.Value{}
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		vars[k] = cty.StringVal(v)
	}
	return cty.ObjectVal(vars)
}
