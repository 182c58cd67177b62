package config

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// DefaultFileNames are searched, in order, when no config path is given.
var DefaultFileNames = []string{
	".multichange.hcl",
	".multichange.yaml",
	".multichange.yml",
	".multichange.json",
}

// 🎯 Load loads the configuration from a file. The format is chosen by the
// file extension (.hcl, .yaml/.yml or .json). Relative paths inside the file
// are relative to the directory holding it.
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	cfg.location = path
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}
	cfg.resolve(filepath.Dir(path))

	return cfg, nil
}

// Find returns the first default config file present in dir.
func Find(dir string) (string, bool) {
	for _, name := range DefaultFileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// LoadOrDefault loads path when it is set. Otherwise the default file names
// are searched in the working directory, and when none exists the defaults
// are returned. An explicit path that does not exist is an error.
func LoadOrDefault(ctx context.Context, path string) (*Config, error) {
	if path != "" {
		return Load(ctx, path)
	}

	found, ok := Find(".")
	if !ok {
		zerolog.Ctx(ctx).Debug().Msg("no configuration file, using defaults")
		return Default(), nil
	}
	return Load(ctx, found)
}
