package document

import (
	"context"
	"fmt"
	"sync"

	"gitlab.com/tozd/go/errors"
)

// MemoryHost keeps documents in memory. It records every write, untitled
// document and warning so callers can inspect them afterwards.
type MemoryHost struct {
	mu       sync.Mutex
	docs     map[string]*Document
	order    []string
	active   string
	untitled []*Document
	warnings []string
	writes   map[string]int
}

var _ Host = (*MemoryHost)(nil)

// NewMemoryHost creates an empty MemoryHost
func NewMemoryHost() *MemoryHost {
	return &MemoryHost{
		docs:   map[string]*Document{},
		writes: map[string]int{},
	}
}

// Open adds a document; the first one opened becomes active.
func (h *MemoryHost) Open(uri, text string) *MemoryHost {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.docs[uri]; !ok {
		h.order = append(h.order, uri)
	}
	h.docs[uri] = &Document{URI: uri, Language: LanguageOf(uri), Text: text}
	if h.active == "" {
		h.active = uri
	}
	return h
}

// Focus makes uri the active document; an empty uri clears it.
func (h *MemoryHost) Focus(uri string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.active = uri
}

// Text returns the current text of a document.
func (h *MemoryHost) Text(uri string) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if doc, ok := h.docs[uri]; ok {
		return doc.Text
	}
	return ""
}

// Writes returns how many times a document was replaced.
func (h *MemoryHost) Writes(uri string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.writes[uri]
}

// Untitled returns the untitled documents opened so far.
func (h *MemoryHost) Untitled() []*Document {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*Document(nil), h.untitled...)
}

// Warnings returns the warnings shown so far.
func (h *MemoryHost) Warnings() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.warnings...)
}

// Active implements Host.Active
func (h *MemoryHost) Active(ctx context.Context) (*Document, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	doc, ok := h.docs[h.active]
	if !ok {
		return nil, errors.WithStack(ErrNoActiveTarget)
	}
	cp := *doc
	return &cp, nil
}

// Visible implements Host.Visible
func (h *MemoryHost) Visible(ctx context.Context) ([]*Document, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	docs := make([]*Document, 0, len(h.order))
	for _, uri := range h.order {
		cp := *h.docs[uri]
		docs = append(docs, &cp)
	}
	return docs, nil
}

// Replace implements Host.Replace
func (h *MemoryHost) Replace(ctx context.Context, uri string, text string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	doc, ok := h.docs[uri]
	if !ok {
		return errors.Errorf("unknown document %s", uri)
	}
	doc.Text = text
	h.writes[uri]++
	return nil
}

// OpenUntitled implements Host.OpenUntitled
func (h *MemoryHost) OpenUntitled(ctx context.Context, content string, language string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	uri := fmt.Sprintf("untitled:Untitled-%d", len(h.untitled)+1)
	h.untitled = append(h.untitled, &Document{URI: uri, Language: language, Text: content})
	return uri, nil
}

// Warn implements Host.Warn
func (h *MemoryHost) Warn(ctx context.Context, msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.warnings = append(h.warnings, msg)
}
