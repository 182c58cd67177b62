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

// Package remote fetches rule lists published in remote repositories.
package remote

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/multichange/pkg/change"
)

var registry = map[string]Source{}

// RegisterSource makes a source available under name.
func RegisterSource(name string, source Source) {
	registry[name] = source
}

// GetSource returns the source registered under name.
func GetSource(name string) (Source, error) {
	source, ok := registry[name]
	if !ok {
		options := make([]string, 0, len(registry))
		for k := range registry {
			options = append(options, k)
		}
		sort.Strings(options)
		return nil, errors.Errorf("source %s not found, options: %s", name, strings.Join(options, ", "))
	}
	return source, nil
}

// Source is a remote provider of rule list files (e.g. GitHub)
type Source interface {
	// Name returns the name of the source (e.g. "github")
	Name() string
	// Fetch returns the raw content of the file ref points at
	Fetch(ctx context.Context, ref Reference) ([]byte, error)
}

// Reference names one file at one revision of a repository
type Reference struct {
	Source string // registered source name, "github" when omitted
	Owner  string
	Repo   string
	Path   string
	Ref    string // branch, tag or commit; the default branch when empty
}

// String formats the reference the way ParseReference reads it.
func (r Reference) String() string {
	s := fmt.Sprintf("%s/%s/%s", r.Owner, r.Repo, r.Path)
	if r.Source != "" && r.Source != "github" {
		s = r.Source + ":" + s
	}
	if r.Ref != "" {
		s += "@" + r.Ref
	}
	return s
}

// ParseReference reads "[source:]owner/repo/path/to/rules.json[@ref]".
func ParseReference(s string) (Reference, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Reference{}, errors.Errorf("empty reference")
	}

	ref := Reference{Source: "github"}
	if source, rest, ok := strings.Cut(s, ":"); ok {
		ref.Source = source
		s = rest
	}

	if at := strings.LastIndex(s, "@"); at >= 0 {
		ref.Ref = s[at+1:]
		s = s[:at]
		if ref.Ref == "" {
			return Reference{}, errors.Errorf("invalid reference %q: empty ref after @", s)
		}
	}

	parts := strings.SplitN(s, "/", 3)
	if len(parts) != 3 {
		return Reference{}, errors.Errorf("invalid reference %q: want owner/repo/path", s)
	}
	ref.Owner = strings.TrimSpace(parts[0])
	ref.Repo = strings.TrimSpace(parts[1])
	ref.Path = strings.Trim(strings.TrimSpace(parts[2]), "/")
	if ref.Owner == "" || ref.Repo == "" || ref.Path == "" {
		return Reference{}, errors.Errorf("invalid reference %q: want owner/repo/path", s)
	}

	return ref, nil
}

// FetchRules downloads the rule list ref points at and decodes it the same
// lenient way an import does.
func FetchRules(ctx context.Context, ref Reference) (change.List, error) {
	zerolog.Ctx(ctx).Debug().Str("ref", ref.String()).Msg("fetching rule list")

	source, err := GetSource(ref.Source)
	if err != nil {
		return nil, err
	}

	data, err := source.Fetch(ctx, ref)
	if err != nil {
		return nil, errors.Errorf("fetching %s: %w", ref, err)
	}

	list, err := change.Unmarshal(data)
	if err != nil {
		return nil, errors.Errorf("decoding %s: %w", ref, err)
	}
	return list, nil
}
