package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Escape     key.Binding
	Logs       key.Binding

	// Pokédex switching
	Pokedex1    key.Binding
	Pokedex2    key.Binding
	Pokedex3    key.Binding
	PrevPokedex key.Binding
	NextPokedex key.Binding

	// Navigation
	Up       key.Binding
	Down     key.Binding
	Top      key.Binding
	Bottom   key.Binding
	PageUp   key.Binding
	PageDown key.Binding

	// Caught actions
	Cycle      key.Binding
	MarkCaught key.Binding
	MarkShiny  key.Binding
	MarkNone   key.Binding
	CatchAll   key.Binding
	ReleaseAll key.Binding
	Search     key.Binding

	// Logs actions
	ToggleFollow key.Binding
	CycleLevel   key.Binding

	// Search/input
	Confirm key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "e"),
			key.WithHelp("e", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Back / clear search"),
		),
		Logs: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "Toggle logs"),
		),

		Pokedex1: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "Paldea"),
		),
		Pokedex2: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "Kitakami"),
		),
		Pokedex3: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "Blueberry"),
		),
		PrevPokedex: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "Previous Pokédex"),
		),
		NextPokedex: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "Next Pokédex"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("pgup", "Page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("pgdown", "Page down"),
		),

		Cycle: key.NewBinding(
			key.WithKeys(" ", "enter"),
			key.WithHelp("space", "Cycle none/caught/shiny"),
		),
		MarkCaught: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Mark caught"),
		),
		MarkShiny: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Mark shiny"),
		),
		MarkNone: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Clear"),
		),
		CatchAll: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "Catch whole listing"),
		),
		ReleaseAll: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "Release whole listing"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "Search"),
		),

		ToggleFollow: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "Toggle follow mode"),
		),
		CycleLevel: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "Cycle level filter"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirm"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns key bindings grouped as the help overlay shows them.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom, k.PageUp, k.PageDown},
		{k.Cycle, k.MarkCaught, k.MarkShiny, k.MarkNone, k.CatchAll, k.ReleaseAll, k.Search},
		{k.Pokedex1, k.Pokedex2, k.Pokedex3, k.PrevPokedex, k.NextPokedex},
		{k.Logs, k.ToggleFollow, k.CycleLevel},
		{k.CycleTheme, k.Help, k.Escape, k.Quit},
	}
}
