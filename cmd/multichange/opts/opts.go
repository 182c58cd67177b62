package opts

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/multichange/pkg/change"
	"github.com/walteh/multichange/pkg/config"
	"github.com/walteh/multichange/pkg/document"
	"github.com/walteh/multichange/pkg/log"
	"github.com/walteh/multichange/pkg/provider"
	"github.com/walteh/multichange/pkg/session"
	"github.com/walteh/multichange/pkg/status"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	// Flags
	ConfigFile string
	StateFile  string
	Debug      bool

	// Resolved before a command runs
	Config     *config.Config
	Store      *session.Store
	Console    *log.Logger
	UserLogger *UserLogger
	Stdin      io.Reader
	Stdout     io.Writer
}

// Init loads the configuration and wires the console for one invocation.
func (o *RootOpts) Init(ctx context.Context, stdin io.Reader, stdout io.Writer) error {
	cfg, err := config.LoadOrDefault(ctx, o.ConfigFile)
	if err != nil {
		return errors.Errorf("loading config: %w", err)
	}

	statePath := cfg.State
	if o.StateFile != "" {
		statePath = o.StateFile
	}

	level := zerolog.WarnLevel
	if o.Debug {
		level = zerolog.DebugLevel
	}

	o.Config = cfg
	o.Store = session.NewStore(statePath)
	o.Console = log.New(stdout, level)
	o.UserLogger = NewUserLogger(ctx, stdout)
	o.Stdin = stdin
	o.Stdout = stdout
	return nil
}

// LoadState reads the session from the store.
func (o *RootOpts) LoadState(ctx context.Context) (*session.State, error) {
	st, err := o.Store.Load(ctx)
	if err != nil {
		return nil, errors.Errorf("loading session: %w", err)
	}
	return st, nil
}

// SaveState writes the session back to the store.
func (o *RootOpts) SaveState(ctx context.Context, st *session.State) error {
	if err := o.Store.Save(ctx, st); err != nil {
		return errors.Errorf("saving session: %w", err)
	}
	return nil
}

// Rules returns the rule list to apply: the given file, else the configured
// rules file, else the session. The flag reports whether the session asked
// for every visible document.
func (o *RootOpts) Rules(ctx context.Context, rulesFile string) (change.List, bool, error) {
	if rulesFile == "" {
		rulesFile = o.Config.Rules
	}
	if rulesFile == "" {
		st, err := o.LoadState(ctx)
		if err != nil {
			return nil, false, err
		}
		return st.Changes, st.MultiEditor, nil
	}

	f, err := os.Open(rulesFile)
	if err != nil {
		return nil, false, errors.Errorf("opening rules file: %w", err)
	}
	defer f.Close()

	list, err := change.Decode(f)
	if err != nil {
		return nil, false, errors.Errorf("reading rules file %s: %w", rulesFile, err)
	}
	return list, false, nil
}

// RulesPath is the file a rule list is read from, for watching.
func (o *RootOpts) RulesPath(rulesFile string) string {
	if rulesFile != "" {
		return rulesFile
	}
	if o.Config.Rules != "" {
		return o.Config.Rules
	}
	return o.Store.Path()
}

// HostOptions configures the file host for an invocation with active as the
// active document. Warnings go to the user logger. The session files are
// never targets.
func (o *RootOpts) HostOptions(active string) document.FileHostOptions {
	cfg := o.Config

	if active != "" && !filepath.IsAbs(active) {
		if abs, err := filepath.Abs(active); err == nil {
			active = abs
		}
	}

	state := filepath.Base(o.Store.Path())
	ignore := append(slices.Clone(cfg.Ignore), "**/"+state, "**/"+state+".lock")

	return document.FileHostOptions{
		Root:        cfg.Root,
		Active:      active,
		Targets:     cfg.Targets,
		Ignore:      ignore,
		Backup:      cfg.Backup,
		UntitledDir: cfg.UntitledDir,
		Stdout:      o.Stdout,
		OnWarn: func(ctx context.Context, msg string) {
			o.UserLogger.LogWarning(msg)
		},
	}
}

// Host builds the file host for an invocation.
func (o *RootOpts) Host(active string) *document.FileHost {
	return document.NewFileHost(o.HostOptions(active))
}

// Provider builds the provider for host.
func (o *RootOpts) Provider(host document.Host, dryRun bool, reporter status.StatusReporter) *provider.Provider {
	return provider.New(host, provider.Options{
		Async:    o.Config.Async,
		DryRun:   dryRun,
		Reporter: reporter,
	})
}
