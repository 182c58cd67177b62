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

package status

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📊 DocumentStatus represents what a batch did to a document
type DocumentStatus int

const (
	StatusUnknown   DocumentStatus = iota
	StatusNew                      // Untitled document was opened
	StatusModified                 // Content was rewritten
	StatusUnchanged                // No rule matched
	StatusFailed                   // Reading or writing failed
)

// String returns a string representation of DocumentStatus
func (s DocumentStatus) String() string {
	switch s {
	case StatusNew:
		return "new"
	case StatusModified:
		return "modified"
	case StatusUnchanged:
		return "unchanged"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// 📄 DocumentInfo contains what is known about a processed document
type DocumentInfo struct {
	URI          string         // Document path or untitled uri
	Language     string         // Language tag
	Status       DocumentStatus // Current status
	Replacements int            // Number of replacements made
	Stats        Stats          // Characters inserted and deleted
	Error        error          // Any error associated with this document
}

// 📈 StatusReporter tracks document status and reports progress
type StatusReporter interface {
	TrackDocument(ctx context.Context, info DocumentInfo)
	GetDocumentInfo(ctx context.Context, uri string) (DocumentInfo, error)
	ListDocuments(ctx context.Context) ([]DocumentInfo, error)

	StartOperation(ctx context.Context, total int)
	UpdateProgress(ctx context.Context, processed int)
	FinishOperation(ctx context.Context)
}

var _ StatusReporter = (*Manager)(nil)

// 🔧 Manager implements StatusReporter
type Manager struct {
	formatter DocumentFormatter

	mu   sync.RWMutex
	docs map[string]DocumentInfo

	total     int
	processed int
}

// 🏭 New creates a new status manager
func New() *Manager {
	return &Manager{
		formatter: NewDefaultDocumentFormatter(),
		docs:      make(map[string]DocumentInfo),
	}
}

// WithFormatter swaps the message formatter.
func (m *Manager) WithFormatter(f DocumentFormatter) *Manager {
	m.formatter = f
	return m
}

func (m *Manager) TrackDocument(ctx context.Context, info DocumentInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.docs[info.URI] = info
	m.processed++

	msg := m.formatter.FormatDocumentOperation(info.URI, info.Status, info.Replacements)
	if info.Error != nil {
		msg = m.formatter.FormatError(info.Error)
	}
	zerolog.Ctx(ctx).Debug().
		Str("uri", info.URI).
		Str("status", info.Status.String()).
		Int("insertions", info.Stats.Insertions).
		Int("deletions", info.Stats.Deletions).
		Msg(msg)
}

func (m *Manager) GetDocumentInfo(ctx context.Context, uri string) (DocumentInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	info, ok := m.docs[uri]
	if !ok {
		return DocumentInfo{}, errors.Errorf("document not tracked: %s", uri)
	}
	return info, nil
}

// ListDocuments returns every tracked document ordered by uri.
func (m *Manager) ListDocuments(ctx context.Context) ([]DocumentInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	docs := make([]DocumentInfo, 0, len(m.docs))
	for _, info := range m.docs {
		docs = append(docs, info)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].URI < docs[j].URI })
	return docs, nil
}

func (m *Manager) StartOperation(ctx context.Context, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.total = total
	m.processed = 0
	zerolog.Ctx(ctx).Debug().Int("total", total).Msg(m.formatter.FormatProgress(0, total))
}

func (m *Manager) UpdateProgress(ctx context.Context, processed int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.processed = processed
	zerolog.Ctx(ctx).Debug().
		Int("processed", processed).
		Int("total", m.total).
		Msg(m.formatter.FormatProgress(processed, m.total))
}

func (m *Manager) FinishOperation(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	zerolog.Ctx(ctx).Debug().
		Int("processed", m.processed).
		Int("total", m.total).
		Msg(m.formatter.FormatProgress(m.total, m.total))
}

// Progress returns the processed and total counts of the current operation.
func (m *Manager) Progress() (int, int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.processed, m.total
}

// Summary totals the tracked documents
type Summary struct {
	Documents    int
	Modified     int
	Failed       int
	Replacements int
	Stats        Stats
}

// Summary totals every tracked document.
func (m *Manager) Summary() Summary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var s Summary
	for _, info := range m.docs {
		s.Documents++
		switch info.Status {
		case StatusModified:
			s.Modified++
		case StatusFailed:
			s.Failed++
		}
		s.Replacements += info.Replacements
		s.Stats.Insertions += info.Stats.Insertions
		s.Stats.Deletions += info.Stats.Deletions
	}
	return s
}
