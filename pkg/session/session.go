// Package session holds the rule list being edited together with the panel
// settings. A State is owned by whoever edits it and is passed around
// explicitly; a Store persists it between runs.
package session

import (
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/multichange/pkg/change"
)

// ErrIndexOutOfRange is returned when an edit names a rule that does not exist.
var ErrIndexOutOfRange = errors.Base("rule index out of range")

// State is the editable session
type State struct {
	Changes     change.List `json:"changes"`
	MultiEditor bool        `json:"multiEditor"`

	// patternErrors holds the message reported for each rule, by index.
	// It is cleared whenever the list changes shape.
	patternErrors map[int]string
}

// New creates an empty session
func New() *State {
	return &State{Changes: change.List{}}
}

func (s *State) check(i int) error {
	if i < 0 || i >= len(s.Changes) {
		return errors.WithDetails(ErrIndexOutOfRange, "index", i, "len", len(s.Changes))
	}
	return nil
}

// Len returns the number of rules.
func (s *State) Len() int {
	return len(s.Changes)
}

// Add appends an empty rule and returns its index.
func (s *State) Add() int {
	s.Changes = append(s.Changes, change.Change{})
	return len(s.Changes) - 1
}

// Remove deletes rule i.
func (s *State) Remove(i int) error {
	if err := s.check(i); err != nil {
		return err
	}
	s.Changes = append(s.Changes[:i], s.Changes[i+1:]...)
	s.ClearPatternErrors()
	return nil
}

// Move swaps rules i and j.
func (s *State) Move(i, j int) error {
	if err := s.check(i); err != nil {
		return err
	}
	if err := s.check(j); err != nil {
		return err
	}
	s.Changes[i], s.Changes[j] = s.Changes[j], s.Changes[i]
	s.ClearPatternErrors()
	return nil
}

// Toggle flips an option of rule i.
func (s *State) Toggle(i int, opt change.Option) error {
	if err := s.check(i); err != nil {
		return err
	}
	if !s.Changes[i].Toggle(opt) {
		return errors.Errorf("unknown option %q", opt)
	}
	s.clearPatternError(i)
	return nil
}

// SetMatcher replaces the matcher of rule i.
func (s *State) SetMatcher(i int, matcher string) error {
	if err := s.check(i); err != nil {
		return err
	}
	s.Changes[i].Matcher = matcher
	s.clearPatternError(i)
	return nil
}

// SetResolver replaces the resolver of rule i.
func (s *State) SetResolver(i int, resolver string) error {
	if err := s.check(i); err != nil {
		return err
	}
	s.Changes[i].Resolver = resolver
	return nil
}

// ToggleMultiEditor switches between the active document and all documents.
func (s *State) ToggleMultiEditor() bool {
	s.MultiEditor = !s.MultiEditor
	return s.MultiEditor
}

// Replace swaps in a whole list, as an import does.
func (s *State) Replace(list change.List) {
	if list == nil {
		list = change.List{}
	}
	s.Changes = list.Clone()
	s.ClearPatternErrors()
}

// SetPatternError attaches a message to rule i. Out of range indexes are ignored.
func (s *State) SetPatternError(i int, msg string) {
	if s.check(i) != nil {
		return
	}
	if s.patternErrors == nil {
		s.patternErrors = map[int]string{}
	}
	s.patternErrors[i] = msg
}

// PatternError returns the message attached to rule i, if any.
func (s *State) PatternError(i int) (string, bool) {
	msg, ok := s.patternErrors[i]
	return msg, ok
}

// ClearPatternErrors drops every attached message.
func (s *State) ClearPatternErrors() {
	s.patternErrors = nil
}

func (s *State) clearPatternError(i int) {
	delete(s.patternErrors, i)
}
