// Package document is the host side of multichange: where documents come
// from and where transformed text goes.
package document

import (
	"context"
	"path/filepath"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// ErrNoActiveTarget is returned when there is no document to transform.
var ErrNoActiveTarget = errors.Base("no active text editor")

// Document is one text buffer known to the host
type Document struct {
	// URI identifies the document; for files it is the path
	URI string

	// Language is the language tag, derived from the extension for files
	Language string

	// Text is the full content
	Text string
}

// Host is the set of editor services multichange relies on
type Host interface {
	// Active returns the focused document or ErrNoActiveTarget
	Active(ctx context.Context) (*Document, error)

	// Visible returns every open document, for multi-document runs
	Visible(ctx context.Context) ([]*Document, error)

	// Replace overwrites the full text of a document
	Replace(ctx context.Context, uri string, text string) error

	// OpenUntitled opens a new document with the given content and language
	OpenUntitled(ctx context.Context, content string, language string) (string, error)

	// Warn shows a warning to the user
	Warn(ctx context.Context, msg string)
}

var languages = map[string]string{
	".json":     "json",
	".jsonc":    "jsonc",
	".yaml":     "yaml",
	".yml":      "yaml",
	".hcl":      "hcl",
	".go":       "go",
	".md":       "markdown",
	".txt":      "plaintext",
	".js":       "javascript",
	".mjs":      "javascript",
	".ts":       "typescript",
	".tsx":      "typescriptreact",
	".py":       "python",
	".sh":       "shellscript",
	".html":     "html",
	".css":      "css",
	".xml":      "xml",
	".toml":     "toml",
	".sql":      "sql",
	".rs":       "rust",
	".java":     "java",
	".c":        "c",
	".h":        "c",
	".cpp":      "cpp",
	".makefile": "makefile",
}

// LanguageOf returns the language tag for a path.
func LanguageOf(path string) string {
	if lang, ok := languages[strings.ToLower(filepath.Ext(path))]; ok {
		return lang
	}
	return "plaintext"
}

// ExtensionOf returns the file extension used for untitled documents of a language.
func ExtensionOf(language string) string {
	switch language {
	case "yaml":
		return ".yaml"
	case "javascript":
		return ".js"
	case "c":
		return ".c"
	}
	for ext, lang := range languages {
		if lang == language {
			return ext
		}
	}
	return ".txt"
}
