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
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// jsonConfig is the on-disk JSON form. Editors write a "$schema" key for
// completion; it is accepted and otherwise ignored.
type jsonConfig struct {
	Schema string `json:"$schema,omitempty"`
	Config
}

// 🔧 JSONParser implements the Parser interface for JSON files
type JSONParser struct{}

func init() {
	Register(&JSONParser{})
}

// 🔍 CanParse checks if this parser can handle the given file
func (p *JSONParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(strings.TrimSpace(filename)), ".json")
}

// 📝 Parse parses the config from JSON bytes. A top level array is a rule
// list, not a config, and is refused with a pointer to the rules setting.
func (p *JSONParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("[")) {
		return nil, errors.New(`parsing JSON: file holds a rule list, not a config; set "rules" to it or pass --rules`)
	}

	var doc jsonConfig
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&doc); err != nil {
		return nil, errors.Errorf("parsing JSON: %w", err)
	}
	if doc.Schema != "" {
		zerolog.Ctx(ctx).Trace().Str("schema", doc.Schema).Msg("config declares a schema")
	}
	return &doc.Config, nil
}
