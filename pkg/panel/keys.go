package panel

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the panel key bindings.
type KeyMap struct {
	// Navigation.
	Up   key.Binding
	Down key.Binding

	// List editing.
	Add      key.Binding
	Delete   key.Binding
	MoveUp   key.Binding
	MoveDown key.Binding

	// Rule fields.
	EditMatcher  key.Binding
	EditResolver key.Binding
	ToggleCase   key.Binding
	ToggleWord   key.Binding
	ToggleRegex  key.Binding

	// Actions.
	ToggleMulti key.Binding
	Apply       key.Binding
	Save        key.Binding
	Import      key.Binding
	Help        key.Binding
	Quit        key.Binding

	// Field editor.
	Confirm key.Binding
	Cancel  key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:           key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:         key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Add:          key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add change")),
		Delete:       key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
		MoveUp:       key.NewBinding(key.WithKeys("K", "shift+up"), key.WithHelp("K", "move up")),
		MoveDown:     key.NewBinding(key.WithKeys("J", "shift+down"), key.WithHelp("J", "move down")),
		EditMatcher:  key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "edit find")),
		EditResolver: key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit replace")),
		ToggleCase:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "match case")),
		ToggleWord:   key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "whole word")),
		ToggleRegex:  key.NewBinding(key.WithKeys("."), key.WithHelp(".", "regex")),
		ToggleMulti:  key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "all files")),
		Apply:        key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply")),
		Save:         key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save")),
		Import:       key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "import")),
		Help:         key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Confirm:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
		Cancel:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

// ShortHelp returns the bindings shown in the one-line help.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.EditMatcher, k.EditResolver, k.Apply, k.Help, k.Quit}
}

// FullHelp returns every binding, grouped in columns.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.MoveUp, k.MoveDown},
		{k.Add, k.Delete, k.EditMatcher, k.EditResolver},
		{k.ToggleCase, k.ToggleWord, k.ToggleRegex, k.ToggleMulti},
		{k.Apply, k.Save, k.Import, k.Quit},
	}
}
