package status

import (
	"fmt"
)

// DocumentFormatter defines how document operations and progress are formatted
type DocumentFormatter interface {
	// FormatDocumentOperation formats a document status message
	FormatDocumentOperation(uri string, status DocumentStatus, replacements int) string

	// FormatProgress formats a progress message
	FormatProgress(current, total int) string

	// FormatError formats an error message
	FormatError(err error) string
}

// DefaultDocumentFormatter provides a default implementation of DocumentFormatter
type DefaultDocumentFormatter struct{}

// NewDefaultDocumentFormatter creates a new DefaultDocumentFormatter
func NewDefaultDocumentFormatter() *DefaultDocumentFormatter {
	return &DefaultDocumentFormatter{}
}

// FormatDocumentOperation formats a document status message with emojis
func (f *DefaultDocumentFormatter) FormatDocumentOperation(uri string, status DocumentStatus, replacements int) string {
	switch status {
	case StatusNew:
		return fmt.Sprintf("✨ Opened %s", uri)
	case StatusModified:
		return fmt.Sprintf("📝 Modified %s (%d replacements)", uri, replacements)
	case StatusFailed:
		return fmt.Sprintf("❌ Failed %s", uri)
	default:
		return fmt.Sprintf("👍 Unchanged %s", uri)
	}
}

// FormatProgress formats a progress message with percentage
func (f *DefaultDocumentFormatter) FormatProgress(current, total int) string {
	var percentage float64
	if total == 0 {
		percentage = 0
		if current > 0 {
			percentage = 100
		}
	} else {
		percentage = float64(current) / float64(total) * 100
	}
	if percentage > 100 {
		percentage = 100
	}

	if current >= total {
		return fmt.Sprintf("✅ Progress: %d/%d (%.0f%%)", current, total, percentage)
	}
	return fmt.Sprintf("⏳ Progress: %d/%d (%.0f%%)", current, total, percentage)
}

// FormatError formats an error message with emoji
func (f *DefaultDocumentFormatter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("❌ Error: %v", err)
}
