// Package tui is an interactive terminal editor for goform schemas.
//
// The editor renders the form through goform.Form, flattens the element tree
// into rows and maps key presses onto Element.Change and Element.Do. The
// data object is previewed as YAML next to the rows.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	goform "github.com/reoring/goform"
	"github.com/reoring/goform/i18n"
	"github.com/reoring/goform/source"
)

// Options configures the editor.
type Options struct {
	Title   string
	Form    *goform.Form
	Schema  []goform.Schema
	Data    goform.Data
	Error   goform.Messages
	Warning goform.Messages

	// Save persists the data on C-s. Nil disables saving.
	Save func(goform.Data) error

	Keys  *KeyMap
	Theme *Theme
}

// document is shared by every copy of the Model so the form's change handler
// always lands in the same place.
type document struct {
	form     *goform.Form
	schema   []goform.Schema
	data     goform.Data
	errors   goform.Messages
	warnings goform.Messages
	view     *goform.Element
	changes  int
}

func (d *document) render() {
	d.view = d.form.Render(goform.Props{
		Schema:  d.schema,
		Data:    d.data,
		Error:   d.errors,
		Warning: d.warnings,
		OnChange: func(next goform.Data) {
			d.data = next
			d.changes++
		},
	})
}

// row is one visible line of the editor.
type row struct {
	el     *goform.Element
	depth  int
	parent int // Index of the enclosing row, or -1.
}

// Model is the bubbletea model of the form editor.
type Model struct {
	doc    *document
	rows   []row
	cursor int

	editing bool
	input   textinput.Model
	preview viewport.Model

	keys   KeyMap
	styles styles
	title  string
	save   func(goform.Data) error

	status    string
	statusErr bool
	dirty     bool
	width     int
	height    int
	quitting  bool
}

// New builds the editor model. Without Data the form starts from
// goform.ComputeInitialData.
func New(opts Options) Model {
	form := opts.Form
	if form == nil {
		form = goform.New()
	}
	data := opts.Data
	if data == nil {
		data = goform.ComputeInitialData(opts.Schema)
	}
	keys := DefaultKeyMap
	if opts.Keys != nil {
		keys = *opts.Keys
	}
	theme := DefaultTheme
	if opts.Theme != nil {
		theme = *opts.Theme
	}
	input := textinput.New()
	input.Prompt = "› "

	m := Model{
		doc: &document{
			form:     form,
			schema:   opts.Schema,
			data:     data,
			errors:   opts.Error,
			warnings: opts.Warning,
		},
		input:   input,
		preview: viewport.New(40, 20),
		keys:    keys,
		styles:  theme.styles(),
		title:   opts.Title,
		save:    opts.Save,
	}
	m.doc.render()
	m.rows = flatten(m.doc.view, 0, -1, nil)
	if focused := m.doc.view.Focus(); focused != nil {
		m.cursor = m.find(rowKey(focused))
	}
	m.refreshPreview()
	return m
}

// Data returns the current data object.
func (m Model) Data() goform.Data { return m.doc.data }

// Dirty reports whether the data changed since the last save.
func (m Model) Dirty() bool { return m.dirty }

// Current returns the element under the cursor.
func (m Model) Current() *goform.Element {
	if len(m.rows) == 0 {
		return nil
	}
	return m.rows[m.cursor].el
}

// Status returns the footer message.
func (m Model) Status() string { return m.status }

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.preview.Width = max(20, msg.Width/2-2)
		m.preview.Height = max(5, msg.Height-5)
		m.refreshPreview()
		return m, nil
	case tea.KeyMsg:
		if m.editing {
			return m.updateInput(msg)
		}
		return m.updateKey(msg)
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.editing = false
		m.input.Blur()
		m.setStatus("", false)
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		m.editing = false
		m.input.Blur()
		el, value := m.Current(), m.input.Value()
		m.apply(el, func() error { return el.Change(value) })
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}
	el := m.Current()
	if el == nil {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Edit):
		if el.Editable() {
			m.editing = true
			m.input.SetValue(formatValue(el))
			m.input.CursorEnd()
			m.setStatus("", false)
			return m, m.input.Focus()
		}
		if hasAction(el, goform.ActionToggle) {
			m.apply(el, func() error { return el.Do(goform.ActionToggle) })
		}
	case key.Matches(msg, m.keys.Toggle):
		switch {
		case el.Editable() && el.Kind == goform.KindBoolean:
			on, _ := goform.AsBool(el.Value)
			m.apply(el, func() error { return el.Change(!on) })
		case hasAction(el, goform.ActionToggle):
			m.apply(el, func() error { return el.Do(goform.ActionToggle) })
		}
	case key.Matches(msg, m.keys.Prev):
		m.cycle(el, -1)
	case key.Matches(msg, m.keys.Next):
		m.cycle(el, 1)
	case key.Matches(msg, m.keys.Clear):
		if el.Editable() {
			m.apply(el, func() error { return el.Change(goform.Unset) })
		}
	case key.Matches(msg, m.keys.Add):
		m.act(goform.ActionAdd)
	case key.Matches(msg, m.keys.Remove):
		m.act(goform.ActionRemove)
	case key.Matches(msg, m.keys.Expand):
		m.act(goform.ActionToggle)
	case key.Matches(msg, m.keys.Save):
		m.doSave()
	}
	return m, nil
}

// act runs action on the row under the cursor or its nearest ancestor that
// offers it.
func (m *Model) act(action string) {
	for i := m.cursor; i >= 0 && i < len(m.rows); i = m.rows[i].parent {
		if el := m.rows[i].el; hasAction(el, action) {
			m.apply(el, func() error { return el.Do(action) })
			return
		}
	}
	m.setStatus(i18n.T(goform.CodeUnknownAction, map[string]string{"action": action}), true)
}

// cycle steps a select through its options.
func (m *Model) cycle(el *goform.Element, step int) {
	n, ok := el.Schema.(*goform.SelectSchema)
	if !ok || !el.Editable() || len(n.Options) == 0 {
		return
	}
	cur, at := fmt.Sprint(el.Value), -1
	for i, o := range n.Options {
		if fmt.Sprint(o.Value) == cur {
			at = i
			break
		}
	}
	next := 0
	switch {
	case at >= 0:
		next = (at + step + len(n.Options)) % len(n.Options)
	case step < 0:
		next = len(n.Options) - 1
	}
	v := n.Options[next].Value
	m.apply(el, func() error { return el.Change(v) })
}

// apply runs an edit against the current view, then re-renders and puts the
// cursor back on the same element, or on target when that one is gone.
func (m *Model) apply(target *goform.Element, fn func() error) {
	current, fallback := rowKey(m.Current()), rowKey(target)
	before := m.doc.changes
	if err := fn(); err != nil {
		m.setStatus(describe(err), true)
		return
	}
	m.doc.render()
	m.rows = flatten(m.doc.view, 0, -1, nil)
	m.cursor = m.find(current, fallback)
	if m.doc.changes != before {
		m.dirty = true
	}
	m.setStatus("", false)
	m.refreshPreview()
}

func (m *Model) doSave() {
	if m.save == nil {
		m.setStatus("saving is not configured", true)
		return
	}
	if err := m.save(m.doc.data); err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.dirty = false
	m.setStatus("saved", false)
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status, m.statusErr = s, isErr
}

func (m *Model) refreshPreview() {
	b, err := source.EncodeData(m.doc.data, source.YAML)
	if err != nil {
		m.preview.SetContent(err.Error())
		return
	}
	m.preview.SetContent(string(b))
}

// find returns the index of the first row matching one of keys, in order,
// or the clamped cursor.
func (m Model) find(keys ...string) int {
	for _, k := range keys {
		if k == "" {
			continue
		}
		for i, r := range m.rows {
			if rowKey(r.el) == k {
				return i
			}
		}
	}
	return min(m.cursor, max(0, len(m.rows)-1))
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	title := m.title
	if title == "" {
		title = "goform"
	}
	if m.dirty {
		title += " *"
	}
	b.WriteString(m.styles.header.Render(title))
	b.WriteString("\n\n")

	list := m.renderRows()
	if m.width >= 80 {
		left := lipgloss.NewStyle().Width(m.width / 2).Render(list)
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, m.styles.preview.Render(m.preview.View())))
	} else {
		b.WriteString(list)
	}
	b.WriteString("\n")

	if m.editing {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	if m.status != "" {
		style := m.styles.faint
		if m.statusErr {
			style = m.styles.err
		}
		b.WriteString(style.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.helpLine())
	return b.String()
}

func (m Model) renderRows() string {
	if len(m.rows) == 0 {
		return m.styles.faint.Render("(empty form)")
	}
	lines := make([]string, len(m.rows))
	for i, r := range m.rows {
		line := strings.Repeat("  ", r.depth) + rowText(r.el)
		if m.width >= 80 {
			line = ansi.Truncate(line, m.width/2-1, "…")
		}
		lines[i] = m.rowStyle(r.el, i == m.cursor).Render(line)
	}
	return strings.Join(lines, "\n")
}

func (m Model) rowStyle(el *goform.Element, selected bool) lipgloss.Style {
	switch {
	case selected:
		return m.styles.selected
	case el.Tag == goform.TagErrorBanner || el.Tag == goform.TagUnsupported || el.Error != "":
		return m.styles.err
	case el.Tag == goform.TagWarningBanner || el.Warning != "":
		return m.styles.warn
	case isGroup(el):
		return m.styles.group
	case el.Disabled || el.ReadOnly:
		return m.styles.faint
	default:
		return m.styles.normal
	}
}

func (m Model) helpLine() string {
	var parts []string
	for _, k := range m.keys.ShortHelp() {
		h := k.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return m.styles.help.Render(strings.Join(parts, " · "))
}

// Run starts the editor on the terminal and returns the final model.
func Run(m Model, opts ...tea.ProgramOption) (Model, error) {
	final, err := tea.NewProgram(m, opts...).Run()
	if err != nil {
		return m, err
	}
	return final.(Model), nil
}

// flatten lists the visible rows below el. Layout-only wrappers contribute
// their children directly; collapsed panels hide theirs.
func flatten(el *goform.Element, depth, parent int, out []row) []row {
	if el == nil {
		return out
	}
	for _, c := range el.Children {
		switch c.Tag {
		case goform.TagGrid, goform.TagColumn, goform.TagColumnCell, goform.TagConditional:
			out = flatten(c, depth, parent, out)
			continue
		}
		at := len(out)
		out = append(out, row{el: c, depth: depth, parent: parent})
		if collapsible(c) && !c.Expanded {
			continue
		}
		out = flatten(c, depth+1, at, out)
	}
	return out
}

func collapsible(el *goform.Element) bool {
	return hasAction(el, goform.ActionToggle) && (el.Tag == goform.TagExpandable || el.Tag == goform.TagExpandableItem)
}

func isGroup(el *goform.Element) bool {
	switch el.Tag {
	case goform.TagExpandable, goform.TagExpandableItem, goform.TagDictionary:
		return true
	}
	return false
}

func hasAction(el *goform.Element, action string) bool {
	for _, a := range el.Actions() {
		if a == action {
			return true
		}
	}
	return false
}

// rowKey identifies an element across renders. Repeated items carry a
// stable key of their own.
func rowKey(el *goform.Element) string {
	if el == nil {
		return ""
	}
	if el.Key != "" {
		return el.Key
	}
	return el.ID + " " + el.Tag
}

func rowText(el *goform.Element) string {
	switch el.Tag {
	case goform.TagErrorBanner:
		return "! " + el.Error
	case goform.TagWarningBanner:
		return "! " + el.Warning
	case goform.TagUnsupported:
		return "? " + el.Label + ": " + el.Error
	case goform.TagDictionaryToggle:
		return check(el.Value) + " " + el.Label
	}
	label := el.Label
	if label == "" {
		label = el.Name
	}
	if el.Required {
		label += "*"
	}
	var s string
	switch {
	case collapsible(el):
		marker := "▸ "
		if el.Expanded {
			marker = "▾ "
		}
		s = marker + label
	case isGroup(el):
		s = label
		if multiple, _ := el.Attrs["multiple"].(bool); multiple {
			s += fmt.Sprintf(" (%d)", len(el.Children))
		}
	case el.Kind == goform.KindBoolean:
		s = check(el.Value) + " " + label
	default:
		s = label + ": " + formatValue(el)
	}
	if el.Error != "" {
		s += "  " + el.Error
	} else if el.Warning != "" {
		s += "  " + el.Warning
	}
	return s
}

func check(v any) string {
	if on, _ := goform.AsBool(v); on {
		return "[x]"
	}
	return "[ ]"
}

// formatValue renders an element's value as editable text. It is the inverse
// of the widgets' string coercion.
func formatValue(el *goform.Element) string {
	if el.Kind == goform.KindPositiveTimePeriodDict {
		if d, ok := goform.AsDuration(el.Value); ok {
			return d.String()
		}
	}
	switch t := el.Value.(type) {
	case nil:
		return ""
	case string:
		return t
	case []string:
		return strings.Join(t, ", ")
	case []any:
		parts := make([]string, len(t))
		for i := range t {
			parts[i] = fmt.Sprint(t[i])
		}
		return strings.Join(parts, ", ")
	case goform.Data, map[string]any:
		return "{…}"
	default:
		return fmt.Sprint(t)
	}
}

// describe turns an edit error into a status line.
func describe(err error) string {
	iss, ok := goform.AsIssues(err)
	if !ok || len(iss) == 0 {
		return err.Error()
	}
	it := iss[0]
	msg := it.Message
	if msg == "" {
		msg = it.Code
	}
	if it.Hint != "" {
		msg += " (" + it.Hint + ")"
	}
	return it.Path + ": " + msg
}
