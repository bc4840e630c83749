package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of the grading screens.
type KeyMap struct {
	GradeA key.Binding
	GradeB key.Binding
	GradeC key.Binding
	Yes    key.Binding
	No     key.Binding
	Accept key.Binding // take the detected charger state
	Abort  key.Binding
}

// DefaultKeyMap is the built-in binding set.
var DefaultKeyMap = KeyMap{
	GradeA: key.NewBinding(key.WithKeys("a", "A", "1"), key.WithHelp("a", "grade A")),
	GradeB: key.NewBinding(key.WithKeys("b", "B", "2"), key.WithHelp("b", "grade B")),
	GradeC: key.NewBinding(key.WithKeys("c", "C", "3"), key.WithHelp("c", "grade C")),
	Yes:    key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "yes")),
	No:     key.NewBinding(key.WithKeys("n", "N"), key.WithHelp("n", "no")),
	Accept: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "detected")),
	Abort:  key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "abort")),
}
