package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/shinyhunt/internal/dex"
	"github.com/five82/shinyhunt/internal/events"
)

// renderHeader renders the status bar.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	compact := m.width < 100
	sep := bg.Spaces(2)

	var parts []string
	parts = append(parts, bg.Render("shinyhunt", styles.Logo))
	parts = append(parts, bg.Render(m.pokedex.Label, styles.AccentText.Bold(true)))

	t := m.tally
	parts = append(parts,
		bg.Render("Caught:", styles.MutedText)+bg.Space()+
			bg.Render(fmt.Sprintf("%d/%d", t.Caught, t.Total), styles.SuccessText)+bg.Space()+
			bg.Render(fmt.Sprintf("(%.0f%%)", t.Percent()), styles.MutedText),
	)
	shinyStyle := styles.MutedText
	if t.Shiny > 0 {
		shinyStyle = styles.WarningText.Bold(true)
	}
	parts = append(parts,
		bg.Render("Shiny:", styles.MutedText)+bg.Space()+bg.Render(fmt.Sprintf("%d", t.Shiny), shinyStyle))

	if e, ok := m.selectedEntry(); ok && m.currentView == ViewList && !compact {
		st := m.states[e.NationalID].String()
		parts = append(parts,
			bg.Render(dex.Capitalize(e.Name), styles.Text)+bg.Space()+styles.StateStyle(st).Render(st))
	}

	if loading := m.renderLoading(styles, bg, compact); loading != "" {
		parts = append(parts, loading)
	}

	if !compact && !m.lastChanged.IsZero() {
		label := "saved"
		if m.lastOrigin == events.External {
			label = "synced"
		}
		parts = append(parts, bg.Render(label+" "+m.lastChanged.Format("15:04:05"), styles.FaintText))
	}

	if m.snapshot.LastError != nil {
		maxErr := 60
		if compact {
			maxErr = 30
		}
		label := "ERROR"
		if m.snapshot.IsOffline() {
			label = classifyConnectionError(m.snapshot.LastError)
		}
		parts = append(parts,
			bg.Render(label, styles.DangerText.Bold(true))+bg.Space()+
				bg.Render(truncate(m.snapshot.LastError.Error(), maxErr), styles.DangerText))
	}

	if m.errorMsg != "" {
		parts = append(parts,
			bg.Render("!", styles.WarningText.Bold(true))+bg.Space()+
				bg.Render(truncate(m.errorMsg, 50), styles.WarningText))
	}

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Foreground(lipgloss.Color(m.theme.Text)).
		Width(m.width).
		Render(strings.Join(parts, sep))
}

// renderLoading shows listing and detail progress while the loader works.
func (m Model) renderLoading(styles Styles, bg BgStyle, compact bool) string {
	snap := m.snapshot
	if snap.Pokedex.ID != m.pokedex.ID {
		return bg.Render("Loading...", styles.WarningText)
	}
	loaded, total := snap.DetailProgress()
	if total == 0 || loaded >= total {
		return ""
	}
	label := bg.Render(fmt.Sprintf("Details %d/%d", loaded, total), styles.MutedText)
	if compact {
		return label
	}
	return label + bg.Space() + m.progress.ViewAs(float64(loaded)/float64(total))
}

// classifyConnectionError returns a short description of a fetch error.
func classifyConnectionError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "OFFLINE"
	case strings.Contains(msg, "no such host"):
		return "HOST NOT FOUND"
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return "TIMEOUT"
	case strings.Contains(msg, "status 429"):
		return "RATE LIMITED"
	default:
		return "OFFLINE"
	}
}

// renderCommandBar renders the command hints bar.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch {
	case m.search.active:
		commands = []cmd{
			{"enter", "Keep filter"},
			{"esc", "Clear"},
		}
	case m.currentView == ViewLogs:
		followLabel := "Pause"
		if !m.logState.follow {
			followLabel = "Follow"
		}
		commands = []cmd{
			{"Space", followLabel},
			{"f", m.logState.level},
			{"j/k", "Scroll"},
			{"l", "List"},
			{"?", "More"},
		}
	default:
		commands = []cmd{
			{"Space", "Cycle"},
			{"c/s/x", "Caught/Shiny/Clear"},
			{"C/X", "All/None"},
			{"/", "Search"},
			{"1-3", "Pokédex"},
			{"l", "Logs"},
			{"?", "More"},
		}
	}

	colon := bg.Sep(":")
	sep := bg.Spaces(2)

	segments := make([]string, 0, len(commands)+2)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}

	if m.search.active {
		segments = append(segments, m.search.input.View())
	} else if m.search.query != "" {
		segments = append(segments, bg.Render("/"+truncate(m.search.query, 18), styles.AccentText))
	}

	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(strings.Join(segments, sep))
}

// formatAge renders a short relative age such as "3m ago".
func formatAge(since time.Duration) string {
	switch {
	case since < time.Minute:
		return "just now"
	case since < time.Hour:
		return fmt.Sprintf("%dm ago", int(since.Minutes()))
	case since < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(since.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(since.Hours()/24))
	}
}
