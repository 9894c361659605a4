package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the control panel keybindings.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Enter    key.Binding
	Back     key.Binding
	NextPage key.Binding

	Test       key.Binding
	TestAll    key.Binding
	Favorite   key.Binding
	Refresh    key.Binding
	ProxyMode  key.Binding
	Close      key.Binding
	CloseAll   key.Binding
	Update     key.Binding
	Filter     key.Binding
	ToggleMode key.Binding
	Preset     key.Binding
	Help       key.Binding
	Quit       key.Binding

	Confirm key.Binding
	Cancel  key.Binding
}

var defaultKeys = KeyMap{
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	Back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	NextPage: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next page")),

	Test:       key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "test group")),
	TestAll:    key.NewBinding(key.WithKeys("T"), key.WithHelp("T", "test all")),
	Favorite:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "favorite")),
	Refresh:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	ProxyMode:  key.NewBinding(key.WithKeys("M"), key.WithHelp("M", "proxy mode")),
	Close:      key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "close conn")),
	CloseAll:   key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "close all")),
	Update:     key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "update provider")),
	Filter:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
	ToggleMode: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "simple/expert")),
	Preset:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "preset")),
	Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:       key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "back/quit")),

	Confirm: key.NewBinding(key.WithKeys("y", "enter"), key.WithHelp("y", "confirm")),
	Cancel:  key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "cancel")),
}
