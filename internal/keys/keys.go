// Package keys contains keybinding definitions for the playground.
package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings of the playground editor. Printable keys
// that are not bound here are typed into the field.
type KeyMap struct {
	// Caret
	Left      key.Binding
	Right     key.Binding
	Up        key.Binding
	Down      key.Binding
	WordLeft  key.Binding
	WordRight key.Binding
	Home      key.Binding
	End       key.Binding

	// Selection
	SelectLeft  key.Binding
	SelectRight key.Binding
	SelectAll   key.Binding

	// Editing
	Backspace key.Binding
	Delete    key.Binding
	Newline   key.Binding
	Submit    key.Binding
	Cancel    key.Binding
	Cut       key.Binding
	Copy      key.Binding
	Paste     key.Binding

	// Markup
	Bold      key.Binding
	Italic    key.Binding
	Underline key.Binding

	// General
	ToggleLog key.Binding
	Help      key.Binding
	Quit      key.Binding
}

// PickerKeyMap is active while the mention picker is open.
type PickerKeyMap struct {
	Next    key.Binding
	Prev    key.Binding
	Accept  key.Binding
	Dismiss key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Left: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "caret left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "caret right"),
		),
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "line up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "line down"),
		),
		WordLeft: key.NewBinding(
			key.WithKeys("ctrl+left", "alt+left", "alt+b"),
			key.WithHelp("ctrl+←", "word left"),
		),
		WordRight: key.NewBinding(
			key.WithKeys("ctrl+right", "alt+right", "alt+f"),
			key.WithHelp("ctrl+→", "word right"),
		),
		Home: key.NewBinding(
			key.WithKeys("home", "ctrl+a"),
			key.WithHelp("home", "start of text"),
		),
		End: key.NewBinding(
			key.WithKeys("end", "ctrl+e"),
			key.WithHelp("end", "end of text"),
		),

		SelectLeft: key.NewBinding(
			key.WithKeys("shift+left"),
			key.WithHelp("shift+←", "select left"),
		),
		SelectRight: key.NewBinding(
			key.WithKeys("shift+right"),
			key.WithHelp("shift+→", "select right"),
		),
		SelectAll: key.NewBinding(
			key.WithKeys("alt+a"),
			key.WithHelp("alt+a", "select all"),
		),

		Backspace: key.NewBinding(
			key.WithKeys("backspace", "ctrl+h"),
			key.WithHelp("⌫", "delete left"),
		),
		Delete: key.NewBinding(
			key.WithKeys("delete", "ctrl+d"),
			key.WithHelp("del", "delete right"),
		),
		Newline: key.NewBinding(
			key.WithKeys("alt+enter", "ctrl+j"),
			key.WithHelp("alt+enter", "newline"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "submit"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel edit"),
		),
		Cut: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("ctrl+x", "cut"),
		),
		Copy: key.NewBinding(
			key.WithKeys("alt+c"),
			key.WithHelp("alt+c", "copy"),
		),
		Paste: key.NewBinding(
			key.WithKeys("ctrl+v"),
			key.WithHelp("ctrl+v", "paste"),
		),

		Bold: key.NewBinding(
			key.WithKeys("ctrl+b"),
			key.WithHelp("ctrl+b", "bold"),
		),
		Italic: key.NewBinding(
			key.WithKeys("alt+i"),
			key.WithHelp("alt+i", "italic"),
		),
		Underline: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("ctrl+u", "underline"),
		),

		ToggleLog: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "toggle log"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// DefaultPickerKeyMap returns the mention picker keybindings.
func DefaultPickerKeyMap() PickerKeyMap {
	return PickerKeyMap{
		Next: key.NewBinding(
			key.WithKeys("down", "ctrl+n"),
			key.WithHelp("↓", "next match"),
		),
		Prev: key.NewBinding(
			key.WithKeys("up", "ctrl+p"),
			key.WithHelp("↑", "previous match"),
		),
		Accept: key.NewBinding(
			key.WithKeys("tab", "enter"),
			key.WithHelp("tab", "insert mention"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close picker"),
		),
	}
}

// ShortHelp returns keybindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Bold, k.ToggleLog, k.Help, k.Quit}
}

// FullHelp returns keybindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Up, k.Down, k.WordLeft, k.WordRight, k.Home, k.End}, // Caret
		{k.SelectLeft, k.SelectRight, k.SelectAll, k.Cut, k.Copy, k.Paste},      // Selection
		{k.Backspace, k.Delete, k.Newline, k.Submit, k.Cancel},                   // Editing
		{k.Bold, k.Italic, k.Underline, k.ToggleLog, k.Help, k.Quit},             // General
	}
}

// ShortHelp returns keybindings for the short help view.
func (k PickerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Accept, k.Dismiss}
}

// FullHelp returns keybindings for the full help view.
func (k PickerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
