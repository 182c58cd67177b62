// Package panel is the interactive terminal editor for a rule list. It edits
// a session.State in place, persists it after every edit and sends apply,
// save and import requests to a Backend.
package panel

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/walteh/multichange/pkg/change"
	"github.com/walteh/multichange/pkg/provider"
	"github.com/walteh/multichange/pkg/session"
)

// EmptyHint is shown when the list has no rules.
const EmptyHint = `No find/replace operation. Press "a" to add a change to get started.`

// Backend answers panel requests, normally a *provider.Provider.
type Backend interface {
	Handle(ctx context.Context, msg provider.Message) ([]provider.Message, error)
}

// Store persists the session, normally a *session.Store.
type Store interface {
	Save(ctx context.Context, st *session.State) error
}

type field int

const (
	fieldNone field = iota
	fieldMatcher
	fieldResolver
)

func (f field) String() string {
	switch f {
	case fieldMatcher:
		return "find"
	case fieldResolver:
		return "replace"
	default:
		return ""
	}
}

// repliesMsg carries the backend answer to a request.
type repliesMsg struct {
	request string
	replies []provider.Message
	err     error
}

// Model is the bubbletea model of the panel.
type Model struct {
	ctx     context.Context
	state   *session.State
	backend Backend
	store   Store

	keys   KeyMap
	styles Styles
	help   help.Model
	input  textinput.Model

	cursor   int
	editing  field
	status   string
	failed   bool
	showHelp bool
	width    int
}

// New creates a panel over state.
func New(ctx context.Context, state *session.State, backend Backend, store Store) Model {
	in := textinput.New()
	in.Prompt = ""
	in.CharLimit = 0
	in.Cursor.SetMode(cursor.CursorStatic)

	return Model{
		ctx:     ctx,
		state:   state,
		backend: backend,
		store:   store,
		keys:    DefaultKeyMap(),
		styles:  DefaultStyles(),
		help:    help.New(),
		input:   in,
	}
}

// State returns the session being edited.
func (m Model) State() *session.State {
	return m.state
}

// Cursor returns the index of the selected rule.
func (m Model) Cursor() int {
	return m.cursor
}

// Status returns the last status line.
func (m Model) Status() string {
	return m.status
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.input.Width = max(msg.Width-16, 10)
		return m, nil

	case repliesMsg:
		return m.handleReplies(msg), nil

	case tea.KeyMsg:
		if m.editing != fieldNone {
			return m.updateEditing(msg)
		}
		return m.updateBrowsing(msg)
	}

	return m, nil
}

func (m Model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.editing = fieldNone
		m.input.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		value := m.input.Value()
		var err error
		if m.editing == fieldMatcher {
			err = m.state.SetMatcher(m.cursor, value)
		} else {
			err = m.state.SetResolver(m.cursor, value)
		}
		m.editing = fieldNone
		m.input.Blur()
		if err != nil {
			m.setError(err)
			return m, nil
		}
		m.persist()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < m.state.Len()-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Add):
		m.cursor = m.state.Add()
		m.persist()

	case key.Matches(msg, m.keys.Delete):
		if m.state.Len() == 0 {
			break
		}
		if err := m.state.Remove(m.cursor); err != nil {
			m.setError(err)
			break
		}
		if m.cursor >= m.state.Len() && m.cursor > 0 {
			m.cursor--
		}
		m.persist()

	case key.Matches(msg, m.keys.MoveUp):
		if m.cursor > 0 {
			if err := m.state.Move(m.cursor, m.cursor-1); err != nil {
				m.setError(err)
				break
			}
			m.cursor--
			m.persist()
		}

	case key.Matches(msg, m.keys.MoveDown):
		if m.cursor < m.state.Len()-1 {
			if err := m.state.Move(m.cursor, m.cursor+1); err != nil {
				m.setError(err)
				break
			}
			m.cursor++
			m.persist()
		}

	case key.Matches(msg, m.keys.ToggleCase):
		m.toggle(change.OptionCaseSensitive)

	case key.Matches(msg, m.keys.ToggleWord):
		m.toggle(change.OptionWholeWords)

	case key.Matches(msg, m.keys.ToggleRegex):
		m.toggle(change.OptionRegEx)

	case key.Matches(msg, m.keys.ToggleMulti):
		m.state.ToggleMultiEditor()
		m.persist()

	case key.Matches(msg, m.keys.EditMatcher):
		return m.startEditing(fieldMatcher)

	case key.Matches(msg, m.keys.EditResolver):
		return m.startEditing(fieldResolver)

	case key.Matches(msg, m.keys.Apply):
		m.state.ClearPatternErrors()
		return m, m.request(provider.MessageRequestTransform, provider.TransformRequest{
			Changes:     m.state.Changes.Clone(),
			MultiEditor: m.state.MultiEditor,
		})

	case key.Matches(msg, m.keys.Save):
		return m, m.request(provider.MessageRequestSave, m.state.Changes.Clone())

	case key.Matches(msg, m.keys.Import):
		return m, m.request(provider.MessageRequestImport, nil)
	}

	return m, nil
}

func (m Model) startEditing(f field) (tea.Model, tea.Cmd) {
	if m.state.Len() == 0 {
		return m, nil
	}
	c := m.state.Changes[m.cursor]
	value := c.Matcher
	if f == fieldResolver {
		value = c.Resolver
	}
	m.editing = f
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m, m.input.Focus()
}

func (m *Model) toggle(opt change.Option) {
	if m.state.Len() == 0 {
		return
	}
	if err := m.state.Toggle(m.cursor, opt); err != nil {
		m.setError(err)
		return
	}
	m.persist()
}

// persist saves the session after an edit.
func (m *Model) persist() {
	if m.store == nil {
		return
	}
	if err := m.store.Save(m.ctx, m.state); err != nil {
		m.setError(err)
	}
}

func (m *Model) setError(err error) {
	zerolog.Ctx(m.ctx).Debug().Err(err).Msg("panel error")
	m.status = err.Error()
	m.failed = true
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.failed = false
}

// request builds the command sending one message to the backend.
func (m Model) request(typ string, value any) tea.Cmd {
	msg, err := provider.NewMessage(typ, value)
	if err != nil {
		return func() tea.Msg { return repliesMsg{request: typ, err: err} }
	}
	ctx, backend := m.ctx, m.backend
	return func() tea.Msg {
		replies, err := backend.Handle(ctx, msg)
		return repliesMsg{request: typ, replies: replies, err: err}
	}
}

func (m Model) handleReplies(msg repliesMsg) Model {
	invalid := 0
	var decodeErr error
	for _, reply := range msg.replies {
		switch reply.Type {
		case provider.MessageReportPatternError:
			report, err := reply.PatternError()
			if err != nil {
				decodeErr = err
				continue
			}
			m.state.SetPatternError(report.Index, report.Message)
			invalid++

		case provider.MessageApplyImport:
			list, err := reply.Changes()
			if err != nil {
				decodeErr = err
				continue
			}
			m.state.Replace(list)
			m.cursor = 0
			m.persist()
		}
	}

	switch {
	case msg.err != nil:
		m.setError(msg.err)
		return m
	case decodeErr != nil:
		m.setError(decodeErr)
		return m
	}

	switch msg.request {
	case provider.MessageRequestTransform:
		if invalid > 0 {
			m.setStatus(fmt.Sprintf("Applied with %d invalid rules skipped", invalid))
		} else {
			m.setStatus("Applied changes to " + m.target())
		}
	case provider.MessageRequestSave:
		m.setStatus("Saved changes to a new document")
	case provider.MessageRequestImport:
		m.setStatus(fmt.Sprintf("Imported %d changes", m.state.Len()))
	}
	return m
}

func (m Model) target() string {
	if m.state.MultiEditor {
		return "all files"
	}
	return "active tab"
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("multichange"))
	b.WriteString("\n\n")

	if m.state.Len() == 0 {
		b.WriteString(m.styles.Muted.Render(EmptyHint))
		b.WriteString("\n")
	}

	for i, c := range m.state.Changes {
		b.WriteString(m.renderChange(i, c))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s all files (m)\n", m.checkbox(m.state.MultiEditor)))
	b.WriteString(m.styles.Button.Render("Apply changes to " + m.target()))
	b.WriteString("\n")

	if m.status != "" {
		style := m.styles.Muted
		if m.failed {
			style = m.styles.Error
		}
		b.WriteString(style.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) renderChange(i int, c change.Change) string {
	cursor := "  "
	style := m.styles.Normal
	if i == m.cursor {
		cursor = "> "
		style = m.styles.Selected
	}

	find, replace := c.Matcher, c.Resolver
	if i == m.cursor && m.editing == fieldMatcher {
		find = m.input.View()
	}
	if i == m.cursor && m.editing == fieldResolver {
		replace = m.input.View()
	}

	line := lipgloss.JoinHorizontal(lipgloss.Top,
		style.Render(fmt.Sprintf("%s%d ", cursor, i+1)),
		m.styles.Label.Render("find: "),
		style.Render(find),
		"  ",
		m.styles.Label.Render("replace: "),
		style.Render(replace),
		"  ",
		m.option(c.IsCaseSensitive, "Aa"),
		" ",
		m.option(c.IsWholeWords, "ab"),
		" ",
		m.option(c.IsUsingRegEx, ".*"),
	)

	if msg, ok := m.state.PatternError(i); ok {
		line += "\n    " + m.styles.Error.Render("⚠ "+msg)
	}
	return line
}

func (m Model) option(on bool, label string) string {
	if on {
		return m.styles.ToggleOn.Render("[" + label + "]")
	}
	return m.styles.ToggleOff.Render(" " + label + " ")
}

func (m Model) checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}
