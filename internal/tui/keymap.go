package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the panel keybindings.
type KeyMap struct {
	// Quit exits the panel.
	Quit key.Binding

	// Download saves the published memoria, once available.
	Download key.Binding

	// Retry starts a fresh generation, replacing any running one.
	Retry key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "salir"),
		),
		Download: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "descargar"),
		),
		Retry: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "regenerar"),
		),
	}
}
