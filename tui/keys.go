package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the form editor.
type KeyMap struct {
	Up   key.Binding
	Down key.Binding

	// Editing the focused row.
	Edit   key.Binding // Open the text input for the row.
	Toggle key.Binding // Flip a boolean or a dictionary toggle.
	Prev   key.Binding // Previous select option.
	Next   key.Binding // Next select option.
	Clear  key.Binding // Remove the row's key from the data.

	// Structure.
	Add    key.Binding // Append an item to the enclosing list.
	Remove key.Binding // Remove the enclosing list item.
	Expand key.Binding // Expand or collapse the enclosing panel.

	// Text input.
	Submit key.Binding
	Cancel key.Binding

	Save key.Binding
	Quit key.Binding
}

// DefaultKeyMap is the built-in key binding set. Vim-style navigation
// (j/k) alongside standard arrow keys.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Edit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("Enter", "edit"),
	),
	Toggle: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("Space", "toggle"),
	),
	Prev: key.NewBinding(
		key.WithKeys("h", "left"),
		key.WithHelp("h/←", "prev option"),
	),
	Next: key.NewBinding(
		key.WithKeys("l", "right"),
		key.WithHelp("l/→", "next option"),
	),
	Clear: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "clear"),
	),
	Add: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "add item"),
	),
	Remove: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "remove item"),
	),
	Expand: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "expand"),
	),
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("Enter", "apply"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "cancel"),
	),
	Save: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("C-s", "save"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// ShortHelp lists the bindings shown in the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Edit, k.Toggle, k.Next, k.Add, k.Remove, k.Expand, k.Save, k.Quit}
}
