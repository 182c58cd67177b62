package change

import (
	"fmt"
)

// InvalidPatternError reports a rule whose matcher could not be compiled.
// It is attached to the offending rule and never aborts a batch.
type InvalidPatternError struct {
	// Index is the position of the rule in its list, or -1 when unknown
	Index   int
	Matcher string
	Pattern string
	Err     error
}

func (e *InvalidPatternError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("invalid pattern %q: %v", e.Matcher, e.Err)
	}
	return fmt.Sprintf("rule %d: invalid pattern %q: %v", e.Index, e.Matcher, e.Err)
}

func (e *InvalidPatternError) Unwrap() error {
	return e.Err
}

// Message is the text shown next to the rule in the panel.
func (e *InvalidPatternError) Message() string {
	return fmt.Sprintf("Invalid regular expression: %v", e.Err)
}

// MalformedImportError is returned when an imported payload is not a JSON
// array of changes.
type MalformedImportError struct {
	Reason string
	Err    error
}

func (e *MalformedImportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("not a valid multichange description: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("not a valid multichange description: %s", e.Reason)
}

func (e *MalformedImportError) Unwrap() error {
	return e.Err
}
