package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/shinyhunt/internal/caught"
	"github.com/five82/shinyhunt/internal/dex"
)

const (
	// listChromeHeight is header, command bar and the list box border and title.
	listChromeHeight = 5
	statsPaneWidth   = 34
	recentLimit      = 8
)

// visibleEntries returns the listing filtered by the active search.
func (m Model) visibleEntries() []dex.Entry {
	if m.snapshot.Pokedex.ID != m.pokedex.ID {
		return nil
	}
	return dex.Filter(m.snapshot.Entries, m.search.query)
}

func (m Model) selectedEntry() (dex.Entry, bool) {
	entries := m.visibleEntries()
	if m.selectedRow < 0 || m.selectedRow >= len(entries) {
		return dex.Entry{}, false
	}
	return entries[m.selectedRow], true
}

func (m Model) listRows() int {
	return max(m.height-listChromeHeight, 1)
}

// clampSelection keeps the selection inside the list and scrolled into view.
func (m *Model) clampSelection() {
	count := len(m.visibleEntries())
	if m.selectedRow >= count {
		m.selectedRow = count - 1
	}
	if m.selectedRow < 0 {
		m.selectedRow = 0
	}
	rows := m.listRows()
	if m.selectedRow < m.offset {
		m.offset = m.selectedRow
	}
	if m.selectedRow >= m.offset+rows {
		m.offset = m.selectedRow - rows + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// handleListKey processes keyboard input for the list view.
func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Search):
		m.search.active = true
		m.search.input.SetValue(m.search.query)
		return m, m.search.input.Focus()

	case key.Matches(msg, m.keys.Escape):
		m.search.query = ""
		m.errorMsg = ""
		m.clampSelection()
		return m, nil

	case key.Matches(msg, m.keys.CatchAll):
		m.applyListing(caught.Caught)
		return m, nil
	case key.Matches(msg, m.keys.ReleaseAll):
		m.applyListing(caught.None)
		return m, nil
	}

	count := len(m.visibleEntries())
	if count == 0 {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Down):
		m.selectedRow++
	case key.Matches(msg, m.keys.Up):
		m.selectedRow--
	case key.Matches(msg, m.keys.Top):
		m.selectedRow = 0
	case key.Matches(msg, m.keys.Bottom):
		m.selectedRow = count - 1
	case key.Matches(msg, m.keys.PageDown):
		m.selectedRow += m.listRows()
	case key.Matches(msg, m.keys.PageUp):
		m.selectedRow -= m.listRows()
	case key.Matches(msg, m.keys.Cycle):
		m.markSelected(func(id int) error {
			_, err := m.caught.Cycle(id)
			return err
		})
	case key.Matches(msg, m.keys.MarkCaught):
		m.markSelected(func(id int) error { return m.caught.SetState(id, caught.Caught) })
	case key.Matches(msg, m.keys.MarkShiny):
		m.markSelected(func(id int) error { return m.caught.SetState(id, caught.Shiny) })
	case key.Matches(msg, m.keys.MarkNone):
		m.markSelected(func(id int) error { return m.caught.SetState(id, caught.None) })
	}
	m.clampSelection()
	return m, nil
}

func (m *Model) markSelected(mark func(id int) error) {
	entry, ok := m.selectedEntry()
	if !ok || m.caught == nil {
		return
	}
	if entry.NationalID < 1 {
		m.errorMsg = fmt.Sprintf("%s has no national number", dex.Capitalize(entry.Name))
		return
	}
	if err := mark(entry.NationalID); err != nil {
		m.errorMsg = err.Error()
		return
	}
	m.errorMsg = ""
}

// applyListing sets every species of the loaded listing to s.
func (m *Model) applyListing(s caught.State) {
	if m.caught == nil || m.snapshot.Pokedex.ID != m.pokedex.ID {
		return
	}
	ids := m.snapshot.NationalIDs()
	if len(ids) == 0 {
		return
	}
	if err := m.caught.Apply(ids, s); err != nil {
		m.errorMsg = err.Error()
		return
	}
	m.errorMsg = ""
}

// handleSearchKey edits the search query; the list filters as you type.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.search.active = false
		m.search.query = ""
		m.search.input.Blur()
		m.clampSelection()
		return m, nil
	case "enter":
		m.search.active = false
		m.search.input.Blur()
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.search.input, cmd = m.search.input.Update(msg)
	m.search.query = m.search.input.Value()
	m.selectedRow = 0
	m.offset = 0
	return m, cmd
}

// renderList renders the Pokédex list beside the stats pane.
func (m Model) renderList() string {
	height := m.height - 2
	statsWidth := statsPaneWidth
	if m.width < 80 {
		statsWidth = 0
	}
	listWidth := m.width - statsWidth

	title := m.pokedex.Label
	if m.search.query != "" {
		title += fmt.Sprintf(" /%s (%d)", truncate(m.search.query, 16), len(m.visibleEntries()))
	}
	list := m.renderBox(title, m.renderRows(listWidth-2), listWidth, height, true)
	if statsWidth == 0 {
		return list
	}
	stats := m.renderBox("Progress", m.renderStats(statsWidth-2), statsWidth, height, false)
	return lipgloss.JoinHorizontal(lipgloss.Top, list, stats)
}

// renderRows renders the visible slice of the list.
func (m Model) renderRows(width int) string {
	entries := m.visibleEntries()
	bg := NewBgStyle(m.theme.FocusBg)
	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)

	if len(entries) == 0 {
		switch {
		case m.snapshot.Pokedex.ID != m.pokedex.ID || m.snapshot.Loading && len(m.snapshot.Entries) == 0:
			return bg.Render("Loading "+m.pokedex.Label+"...", styles.MutedText)
		case m.search.query != "":
			return bg.Render("No Pokémon match "+m.search.query, styles.MutedText)
		default:
			return bg.Render("No entries", styles.MutedText)
		}
	}

	rows := m.listRows()
	end := min(m.offset+rows, len(entries))
	lines := make([]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		lines = append(lines, m.renderRow(entries[i], i == m.selectedRow, width))
	}
	return strings.Join(lines, "\n")
}

// renderRow renders one list entry: marker, number, name, types, version.
func (m Model) renderRow(e dex.Entry, selected bool, width int) string {
	bgColor := m.theme.FocusBg
	if selected {
		bgColor = m.theme.SelectionBg
	}
	bg := NewBgStyle(bgColor)
	styles := m.theme.Styles().WithBackground(bgColor)

	st := m.states[e.NationalID]
	marker := "  "
	markerStyle := styles.FaintText
	switch st {
	case caught.Caught:
		marker = "● "
		markerStyle = styles.SuccessText
	case caught.Shiny:
		marker = "★ "
		markerStyle = styles.WarningText.Bold(true)
	}

	nameStyle := styles.Text
	if selected {
		nameStyle = nameStyle.Foreground(lipgloss.Color(m.theme.SelectionText)).Bold(true)
	}

	parts := []string{
		bg.Render(marker, markerStyle),
		bg.Render("#"+dex.FormatNumber(e.Number), styles.MutedText),
		bg.Render(padRight(truncate(dex.Capitalize(e.Name), 16), 16), nameStyle),
	}
	if detail, ok := m.snapshot.Details[e.NationalID]; ok {
		types := make([]string, 0, len(detail.Types))
		for _, t := range detail.Types {
			types = append(types, bg.Render(t, styles.TypeStyle(t).Background(lipgloss.Color(bgColor))))
		}
		parts = append(parts, bg.Join(types, "/"))
	} else {
		parts = append(parts, bg.Render("…", styles.FaintText))
	}
	if m.pokedex.Name == "paldea" {
		switch dex.VersionOf(e.Number) {
		case dex.Scarlet:
			parts = append(parts, bg.Render("S", styles.DangerText))
		case dex.Violet:
			parts = append(parts, bg.Render("V", styles.InfoText.Bold(true)))
		}
	}
	return bg.FillLine(bg.Join(parts, " "), width)
}

// renderStats renders the progress pane: listing tally, national tally,
// version split and recent catches.
func (m Model) renderStats(width int) string {
	bg := NewBgStyle(m.theme.Surface)
	styles := m.theme.Styles().WithBackground(m.theme.Surface)

	line := func(label, value string, style lipgloss.Style) string {
		return bg.Render(padRight(label, 10), styles.MutedText) + bg.Render(value, style)
	}

	var lines []string
	t := m.tally
	lines = append(lines,
		bg.Render(m.pokedex.Label, styles.AccentText.Bold(true)),
		line("Caught", fmt.Sprintf("%d/%d", t.Caught, t.Total), styles.SuccessText),
		line("Shiny", fmt.Sprintf("%d", t.Shiny), styles.WarningText),
		line("Complete", fmt.Sprintf("%.1f%%", t.Percent()), styles.Text),
		"",
		bg.Render("National", styles.AccentText.Bold(true)),
		line("Caught", fmt.Sprintf("%d/%d", m.overall.Caught, m.overall.Total), styles.SuccessText),
		line("Shiny", fmt.Sprintf("%d", m.overall.Shiny), styles.WarningText),
	)

	if m.pokedex.Name == "paldea" && m.snapshot.Pokedex.ID == m.pokedex.ID {
		scarlet, violet := m.versionTallies()
		lines = append(lines, "",
			bg.Render("Exclusives", styles.AccentText.Bold(true)),
			line("Scarlet", fmt.Sprintf("%d/%d", scarlet.Caught, scarlet.Total), styles.DangerText),
			line("Violet", fmt.Sprintf("%d/%d", violet.Caught, violet.Total), styles.InfoText),
		)
	}

	lines = append(lines, "", bg.Render("Recent", styles.AccentText.Bold(true)))
	if len(m.recent) == 0 {
		lines = append(lines, bg.Render("nothing caught yet", styles.FaintText))
	}
	for _, r := range m.recent {
		style := styles.Text
		if m.states[r.ID] == caught.Shiny {
			style = styles.WarningText
		}
		name := truncate(m.speciesName(r.ID), width-10)
		lines = append(lines, bg.Render(padRight(formatAge(time.Since(r.At)), 9), styles.FaintText)+bg.Space()+bg.Render(name, style))
	}
	return strings.Join(lines, "\n")
}

// versionTallies counts caught Scarlet and Violet exclusives in the listing.
func (m Model) versionTallies() (scarlet, violet caught.Tally) {
	for _, e := range m.snapshot.Entries {
		var t *caught.Tally
		switch dex.VersionOf(e.Number) {
		case dex.Scarlet:
			t = &scarlet
		case dex.Violet:
			t = &violet
		default:
			continue
		}
		t.Total++
		switch m.states[e.NationalID] {
		case caught.Caught:
			t.Caught++
		case caught.Shiny:
			t.Caught++
			t.Shiny++
		}
	}
	return scarlet, violet
}

// speciesName resolves a national id through the loaded listing.
func (m Model) speciesName(id int) string {
	for _, e := range m.snapshot.Entries {
		if e.NationalID == id {
			return dex.Capitalize(e.Name)
		}
	}
	return fmt.Sprintf("#%d", id)
}
