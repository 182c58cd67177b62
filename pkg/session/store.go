package session

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/multichange/pkg/change"
)

// SchemaVersion is written into every state file
const SchemaVersion = "1.0.0"

// DefaultFileName is the state file used when none is configured
const DefaultFileName = ".multichange.state.json"

// StaleLockAge is how old a lock file must be before a save takes it over.
const StaleLockAge = time.Minute

type stateFile struct {
	SchemaVersion string          `json:"schema_version"`
	Changes       json.RawMessage `json:"changes"`
	MultiEditor   bool            `json:"multiEditor"`
}

// Store reads and writes a State to a JSON file
type Store struct {
	path string
}

// NewStore creates a store for the given state file
func NewStore(path string) *Store {
	if path == "" {
		path = DefaultFileName
	}
	return &Store{path: filepath.Clean(path)}
}

// Path returns the state file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the state file. A missing file yields an empty session. Rules
// are decoded leniently, like an import.
func (s *Store) Load(ctx context.Context) (*State, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", s.path).Msg("loading session")

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		logger.Debug().Msg("no session file, starting clean")
		return New(), nil
	}
	if err != nil {
		return nil, errors.Errorf("reading state file: %w", err)
	}

	var file stateFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, errors.Errorf("parsing state file: %w", err)
	}

	st := New()
	st.MultiEditor = file.MultiEditor
	if len(file.Changes) > 0 && string(file.Changes) != "null" {
		list, err := change.Unmarshal(file.Changes)
		if err != nil {
			return nil, errors.Errorf("parsing state file changes: %w", err)
		}
		st.Changes = list
	}
	return st, nil
}

// Save writes the state file. Concurrent writers are kept out by an
// exclusive lock file next to it.
func (s *Store) Save(ctx context.Context, st *State) error {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", s.path).Int("changes", st.Len()).Msg("saving session")

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Errorf("creating state directory: %w", err)
		}
	}

	unlock, err := s.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	changes, err := change.Marshal(st.Changes)
	if err != nil {
		return errors.Errorf("marshaling changes: %w", err)
	}

	data, err := json.MarshalIndent(stateFile{
		SchemaVersion: SchemaVersion,
		Changes:       changes,
		MultiEditor:   st.MultiEditor,
	}, "", "\t")
	if err != nil {
		return errors.Errorf("marshaling state: %w", err)
	}

	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return errors.Errorf("writing temp state file: %w", err)
	}
	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return errors.Errorf("renaming temp state file: %w", err)
	}
	return nil
}

func (s *Store) lock(ctx context.Context) (func(), error) {
	lockPath := s.path + ".lock"
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if os.IsExist(err) {
		info, serr := os.Stat(lockPath)
		if serr != nil || time.Since(info.ModTime()) < StaleLockAge {
			return nil, errors.Errorf("session is locked by another process (remove %s if none is running): %w", lockPath, err)
		}
		zerolog.Ctx(ctx).Warn().Str("lock", lockPath).Time("modified", info.ModTime()).Msg("taking over stale lock file")
		if rerr := os.Remove(lockPath); rerr != nil && !os.IsNotExist(rerr) {
			return nil, errors.Errorf("removing stale lock file %s: %w", lockPath, rerr)
		}
		f, err = os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	}
	if err != nil {
		return nil, errors.Errorf("creating lock file %s: %w", lockPath, err)
	}
	return func() {
		f.Close()
		os.Remove(lockPath)
	}, nil
}
