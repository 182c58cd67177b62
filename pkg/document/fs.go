package document

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// FileHostOptions configures a FileHost
type FileHostOptions struct {
	Root        string   // base directory for relative paths and target globs
	Active      string   // path of the active document, if any
	Targets     []string // doublestar patterns selecting the visible documents
	Ignore      []string // doublestar patterns removed from the visible documents
	Backup      bool     // keep a .bak copy before overwriting a document
	UntitledDir string   // where untitled documents are written; empty means Stdout
	Stdout      io.Writer
	OnWarn      func(ctx context.Context, msg string)
}

// FileHost is a Host backed by files on disk. The active document is a
// single path and the visible documents are whatever the target globs match.
type FileHost struct {
	opts FileHostOptions

	mu       sync.Mutex
	untitled int
}

var _ Host = (*FileHost)(nil)

// NewFileHost creates a FileHost
func NewFileHost(opts FileHostOptions) *FileHost {
	if opts.Root == "" {
		opts.Root = "."
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	return &FileHost{opts: opts}
}

func (h *FileHost) resolve(uri string) string {
	if filepath.IsAbs(uri) {
		return uri
	}
	return filepath.Join(h.opts.Root, uri)
}

func (h *FileHost) read(uri string) (*Document, error) {
	content, err := os.ReadFile(h.resolve(uri))
	if err != nil {
		return nil, errors.Errorf("reading %s: %w", uri, err)
	}
	return &Document{
		URI:      uri,
		Language: LanguageOf(uri),
		Text:     string(content),
	}, nil
}

// Active implements Host.Active
func (h *FileHost) Active(ctx context.Context) (*Document, error) {
	if h.opts.Active == "" {
		return nil, errors.WithStack(ErrNoActiveTarget)
	}
	return h.read(h.opts.Active)
}

// Visible implements Host.Visible
func (h *FileHost) Visible(ctx context.Context) ([]*Document, error) {
	logger := zerolog.Ctx(ctx)

	paths, err := h.match(ctx)
	if err != nil {
		return nil, err
	}

	docs := make([]*Document, 0, len(paths))
	for _, p := range paths {
		doc, err := h.read(p)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	logger.Debug().Int("documents", len(docs)).Msg("collected visible documents")
	return docs, nil
}

// match expands the target globs. Without targets the active document is
// the only visible one.
func (h *FileHost) match(ctx context.Context) ([]string, error) {
	if len(h.opts.Targets) == 0 {
		if h.opts.Active == "" {
			return nil, nil
		}
		return []string{h.opts.Active}, nil
	}

	fsys := os.DirFS(h.opts.Root)
	seen := map[string]bool{}
	var out []string
	for _, pattern := range h.opts.Targets {
		if !doublestar.ValidatePattern(pattern) {
			return nil, errors.Errorf("invalid target pattern %q", pattern)
		}
		matches, err := doublestar.Glob(fsys, filepath.ToSlash(pattern))
		if err != nil {
			return nil, errors.Errorf("expanding %q: %w", pattern, err)
		}
		for _, m := range matches {
			if seen[m] || h.ignored(m) {
				continue
			}
			info, err := fs.Stat(fsys, m)
			if err != nil {
				return nil, errors.Errorf("stat %s: %w", m, err)
			}
			if info.IsDir() {
				continue
			}
			seen[m] = true
			out = append(out, filepath.FromSlash(m))
		}
	}
	sort.Strings(out)

	zerolog.Ctx(ctx).Trace().Strs("paths", out).Msg("matched targets")
	return out, nil
}

func (h *FileHost) ignored(path string) bool {
	for _, ignore := range h.opts.Ignore {
		matched, err := doublestar.Match(ignore, path)
		if err != nil {
			return false
		}
		if matched {
			return true
		}
	}
	return false
}

// Replace implements Host.Replace
func (h *FileHost) Replace(ctx context.Context, uri string, text string) error {
	path := h.resolve(uri)

	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	} else if !os.IsNotExist(err) {
		return errors.Errorf("checking %s: %w", uri, err)
	}

	if h.opts.Backup {
		if err := backupFile(path); err != nil {
			return errors.Errorf("backing up %s: %w", uri, err)
		}
	}

	if err := writeFileAtomic(path, []byte(text), mode); err != nil {
		return errors.Errorf("replacing %s: %w", uri, err)
	}

	zerolog.Ctx(ctx).Debug().Str("path", path).Int("bytes", len(text)).Msg("replaced document")
	return nil
}

// OpenUntitled implements Host.OpenUntitled
func (h *FileHost) OpenUntitled(ctx context.Context, content string, language string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.opts.UntitledDir == "" {
		h.untitled++
		if _, err := io.WriteString(h.opts.Stdout, content+"\n"); err != nil {
			return "", errors.Errorf("writing untitled document: %w", err)
		}
		return fmt.Sprintf("untitled:Untitled-%d", h.untitled), nil
	}

	if err := os.MkdirAll(h.opts.UntitledDir, 0755); err != nil {
		return "", errors.Errorf("creating untitled directory: %w", err)
	}

	ext := ExtensionOf(language)
	for {
		h.untitled++
		path := filepath.Join(h.opts.UntitledDir, fmt.Sprintf("untitled-%d%s", h.untitled, ext))
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if os.IsExist(err) {
			continue
		}
		if err != nil {
			return "", errors.Errorf("creating untitled document: %w", err)
		}
		_, werr := io.WriteString(f, content)
		cerr := f.Close()
		if werr != nil {
			return "", errors.Errorf("writing untitled document: %w", werr)
		}
		if cerr != nil {
			return "", errors.Errorf("closing untitled document: %w", cerr)
		}
		zerolog.Ctx(ctx).Debug().Str("path", path).Str("language", language).Msg("opened untitled document")
		return path, nil
	}
}

// Warn implements Host.Warn
func (h *FileHost) Warn(ctx context.Context, msg string) {
	if h.opts.OnWarn != nil {
		h.opts.OnWarn(ctx, msg)
		return
	}
	zerolog.Ctx(ctx).Warn().Msg(msg)
}

func writeFileAtomic(path string, content []byte, mode os.FileMode) error {
	tempPath := path + ".tmp"

	if err := os.WriteFile(tempPath, content, mode); err != nil {
		return errors.Errorf("writing temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return errors.Errorf("renaming temp file: %w", err)
	}

	return nil
}

func backupFile(path string) error {
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Errorf("reading original: %w", err)
	}
	if err := os.WriteFile(path+".bak", content, 0644); err != nil {
		return errors.Errorf("writing backup: %w", err)
	}
	return nil
}
