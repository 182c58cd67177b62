package document

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func setupTestLogger(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.TestWriter{T: t}).With().Timestamp().Logger()
	return logger.WithContext(context.Background())
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func TestFileHost_Active(t *testing.T) {
	ctx := setupTestLogger(t)

	t.Run("reads_active_file", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{"notes.md": "# hi"})

		host := NewFileHost(FileHostOptions{Root: dir, Active: "notes.md"})
		doc, err := host.Active(ctx)
		require.NoError(t, err)
		assert.Equal(t, "notes.md", doc.URI)
		assert.Equal(t, "markdown", doc.Language)
		assert.Equal(t, "# hi", doc.Text)
	})

	t.Run("no_active_file", func(t *testing.T) {
		host := NewFileHost(FileHostOptions{Root: t.TempDir()})
		_, err := host.Active(ctx)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNoActiveTarget))
	})

	t.Run("missing_active_file", func(t *testing.T) {
		host := NewFileHost(FileHostOptions{Root: t.TempDir(), Active: "gone.txt"})
		_, err := host.Active(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading gone.txt")
	})
}

func TestFileHost_Visible(t *testing.T) {
	ctx := setupTestLogger(t)
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.txt":            "a",
		"sub/b.txt":        "b",
		"sub/deep/c.txt":   "c",
		"vendor/d.txt":     "d",
		"other.md":         "md",
		"sub/dir.txt/e.go": "package e",
	})

	tests := []struct {
		name    string
		opts    FileHostOptions
		want    []string
		wantErr string
	}{
		{
			name: "recursive_glob",
			opts: FileHostOptions{Targets: []string{"**/*.txt"}},
			want: []string{"a.txt", "sub/b.txt", "sub/deep/c.txt", "vendor/d.txt"},
		},
		{
			name: "ignore_globs",
			opts: FileHostOptions{Targets: []string{"**/*.txt"}, Ignore: []string{"vendor/**"}},
			want: []string{"a.txt", "sub/b.txt", "sub/deep/c.txt"},
		},
		{
			name: "multiple_patterns_deduplicated",
			opts: FileHostOptions{Targets: []string{"*.txt", "a.txt", "*.md"}},
			want: []string{"a.txt", "other.md"},
		},
		{
			name: "no_targets_uses_active",
			opts: FileHostOptions{Active: "other.md"},
			want: []string{"other.md"},
		},
		{
			name: "nothing_open",
			opts: FileHostOptions{},
			want: []string{},
		},
		{
			name:    "invalid_pattern",
			opts:    FileHostOptions{Targets: []string{"[a"}},
			wantErr: "invalid target pattern",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.Root = dir
			host := NewFileHost(tt.opts)
			docs, err := host.Visible(ctx)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)

			got := []string{}
			for _, doc := range docs {
				got = append(got, filepath.ToSlash(doc.URI))
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFileHost_Replace(t *testing.T) {
	ctx := setupTestLogger(t)

	t.Run("overwrites_and_keeps_mode", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "run.sh")
		require.NoError(t, os.WriteFile(path, []byte("old"), 0755))

		host := NewFileHost(FileHostOptions{Root: dir})
		require.NoError(t, host.Replace(ctx, "run.sh", "new"))

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "new", string(content))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0755), info.Mode().Perm())

		_, err = os.Stat(path + ".tmp")
		assert.True(t, os.IsNotExist(err), "temp file should be gone")
	})

	t.Run("backup", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{"a.txt": "old"})

		host := NewFileHost(FileHostOptions{Root: dir, Backup: true})
		require.NoError(t, host.Replace(ctx, "a.txt", "new"))

		backup, err := os.ReadFile(filepath.Join(dir, "a.txt.bak"))
		require.NoError(t, err)
		assert.Equal(t, "old", string(backup))
	})
}

func TestFileHost_OpenUntitled(t *testing.T) {
	ctx := setupTestLogger(t)

	t.Run("writes_to_stdout", func(t *testing.T) {
		buf := &bytes.Buffer{}
		host := NewFileHost(FileHostOptions{Root: t.TempDir(), Stdout: buf})

		uri, err := host.OpenUntitled(ctx, "[]", "json")
		require.NoError(t, err)
		assert.Equal(t, "untitled:Untitled-1", uri)
		assert.Equal(t, "[]\n", buf.String())
	})

	t.Run("writes_new_files", func(t *testing.T) {
		dir := t.TempDir()
		untitledDir := filepath.Join(dir, "untitled")
		writeFiles(t, untitledDir, map[string]string{"untitled-1.json": "taken"})

		host := NewFileHost(FileHostOptions{Root: dir, UntitledDir: untitledDir})

		uri, err := host.OpenUntitled(ctx, "[1]", "json")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(untitledDir, "untitled-2.json"), uri)

		content, err := os.ReadFile(uri)
		require.NoError(t, err)
		assert.Equal(t, "[1]", string(content))

		taken, err := os.ReadFile(filepath.Join(untitledDir, "untitled-1.json"))
		require.NoError(t, err)
		assert.Equal(t, "taken", string(taken))
	})
}

func TestFileHost_Warn(t *testing.T) {
	var got []string
	host := NewFileHost(FileHostOptions{OnWarn: func(ctx context.Context, msg string) {
		got = append(got, msg)
	}})
	host.Warn(context.Background(), "careful")
	assert.Equal(t, []string{"careful"}, got)
}

func TestLanguageOf(t *testing.T) {
	assert.Equal(t, "json", LanguageOf("rules.JSON"))
	assert.Equal(t, "go", LanguageOf("main.go"))
	assert.Equal(t, "plaintext", LanguageOf("LICENSE"))
	assert.Equal(t, ".json", ExtensionOf("json"))
	assert.Equal(t, ".yaml", ExtensionOf("yaml"))
	assert.Equal(t, ".txt", ExtensionOf("klingon"))
}
