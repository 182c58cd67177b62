package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/walteh/multichange/pkg/change"
	"github.com/walteh/multichange/pkg/document"
	"github.com/walteh/multichange/pkg/status"
)

// 🔧 MockReporter is a mock implementation of the status.StatusReporter interface
type MockReporter struct {
	mock.Mock
}

var _ status.StatusReporter = (*MockReporter)(nil)

func (m *MockReporter) TrackDocument(ctx context.Context, info status.DocumentInfo) {
	m.Called(ctx, info)
}

func (m *MockReporter) GetDocumentInfo(ctx context.Context, uri string) (status.DocumentInfo, error) {
	result := m.Called(ctx, uri)
	return result.Get(0).(status.DocumentInfo), result.Error(1)
}

func (m *MockReporter) ListDocuments(ctx context.Context) ([]status.DocumentInfo, error) {
	result := m.Called(ctx)
	return result.Get(0).([]status.DocumentInfo), result.Error(1)
}

func (m *MockReporter) StartOperation(ctx context.Context, total int) {
	m.Called(ctx, total)
}

func (m *MockReporter) UpdateProgress(ctx context.Context, processed int) {
	m.Called(ctx, processed)
}

func (m *MockReporter) FinishOperation(ctx context.Context) {
	m.Called(ctx)
}

func TestTransformReportsDocuments(t *testing.T) {
	ctx := setupTestLogger(t)

	host := document.NewMemoryHost().
		Open("a.go", "foo foo").
		Open("b.go", "bar")

	reporter := &MockReporter{}
	reporter.On("StartOperation", mock.Anything, 2).Once()
	reporter.On("TrackDocument", mock.Anything, mock.MatchedBy(func(info status.DocumentInfo) bool {
		return info.URI == "a.go" && info.Status == status.StatusModified && info.Replacements == 2
	})).Once()
	reporter.On("TrackDocument", mock.Anything, mock.MatchedBy(func(info status.DocumentInfo) bool {
		return info.URI == "b.go" && info.Status == status.StatusUnchanged
	})).Once()
	reporter.On("FinishOperation", mock.Anything).Once()

	p := New(host, Options{Reporter: reporter})
	result, err := p.Transform(ctx, change.List{{Matcher: "foo", Resolver: "baz"}}, true)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Modified())
	reporter.AssertExpectations(t)
	reporter.AssertNotCalled(t, "UpdateProgress", mock.Anything, mock.Anything)
}

func TestTransformReportsFailure(t *testing.T) {
	ctx := setupTestLogger(t)

	host := &failingHost{MemoryHost: document.NewMemoryHost().Open("a.go", "foo"), fail: "a.go"}

	reporter := &MockReporter{}
	reporter.On("StartOperation", mock.Anything, 1).Once()
	reporter.On("TrackDocument", mock.Anything, mock.MatchedBy(func(info status.DocumentInfo) bool {
		return info.Status == status.StatusFailed && info.Error != nil
	})).Once()
	reporter.On("FinishOperation", mock.Anything).Once()

	p := New(host, Options{Reporter: reporter})
	_, err := p.Transform(ctx, change.List{{Matcher: "foo", Resolver: "bar"}}, false)
	require.Error(t, err)

	reporter.AssertExpectations(t)
}

func TestTransformReportsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(setupTestLogger(t))
	cancel()

	host := document.NewMemoryHost().Open("a.go", "foo")

	reporter := &MockReporter{}
	reporter.On("StartOperation", mock.Anything, 1).Once()
	reporter.On("FinishOperation", mock.Anything).Once()

	_, err := New(host, Options{Reporter: reporter}).Transform(ctx, change.List{{Matcher: "foo", Resolver: "bar"}}, false)
	require.ErrorIs(t, err, context.Canceled)

	reporter.AssertExpectations(t)
	reporter.AssertNotCalled(t, "TrackDocument", mock.Anything, mock.Anything)
}
