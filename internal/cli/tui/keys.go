package tui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Next     key.Binding
	Prev     key.Binding
	Mood     key.Binding
	Search   key.Binding
	Clear    key.Binding
	Reload   key.Binding
	Open     key.Binding
	Analysis key.Binding
	Period   key.Binding
	Back     key.Binding
	Quit     key.Binding
}

// DefaultKeyMap возвращает раскладку по умолчанию.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "arriba")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "abajo")),
		Next:     key.NewBinding(key.WithKeys("right", "n"), key.WithHelp("→/n", "siguiente")),
		Prev:     key.NewBinding(key.WithKeys("left", "p"), key.WithHelp("←/p", "anterior")),
		Mood:     key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "ánimo")),
		Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "buscar")),
		Clear:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "limpiar filtros")),
		Reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "recargar")),
		Open:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "abrir")),
		Analysis: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "análisis")),
		Period:   key.NewBinding(key.WithKeys("1", "2", "3"), key.WithHelp("1/2/3", "7/15/30 días")),
		Back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "volver")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "salir")),
	}
}
