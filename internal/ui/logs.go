package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/shinyhunt/internal/logtail"
)

// Log view limits.
const (
	logTailLines = 500
)

var logLevels = []string{"DEBUG", "INFO", "WARN", "ERROR"}

// logState holds all log-related state.
type logState struct {
	rawLines []string
	lines    []string
	level    string
	follow   bool
	err      error
}

func newLogState() logState {
	return logState{level: "DEBUG", follow: true}
}

type logLinesMsg struct {
	lines []string
	err   error
}

// refreshLogs reads the tail of the application log off the UI goroutine.
func (m Model) refreshLogs() tea.Cmd {
	path := m.logPath
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		lines, err := logtail.Read(path, logTailLines)
		return logLinesMsg{lines: lines, err: err}
	}
}

func (m *Model) handleLogLines(msg logLinesMsg) {
	m.logState.err = msg.err
	if msg.err != nil {
		return
	}
	m.logState.rawLines = msg.lines
	m.applyLogFilter()
}

func (m *Model) applyLogFilter() {
	m.logState.lines = logtail.FilterLevel(m.logState.rawLines, m.logState.level)
	m.updateLogViewport()
}

// updateLogViewport sizes the viewport and loads the filtered lines.
func (m *Model) updateLogViewport() {
	// Box inner height is the screen minus header, command bar, status
	// line, two borders and the title row.
	width := max(m.width-2, 1)
	height := max(m.height-6, 1)
	if m.logViewport.Width == 0 {
		m.logViewport = viewport.New(width, height)
	}
	m.logViewport.Width = width
	m.logViewport.Height = height
	m.logViewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.FocusBg))
	m.logViewport.SetContent(m.renderLogContent())
	if m.logState.follow {
		m.logViewport.GotoBottom()
	}
}

func (m Model) renderLogContent() string {
	if len(m.logState.lines) == 0 {
		return "no log lines"
	}
	styles := m.theme.Styles()
	out := make([]string, 0, len(m.logState.lines))
	for _, line := range m.logState.lines {
		style := styles.Text
		switch logtail.Level(line) {
		case "ERROR":
			style = styles.DangerText
		case "WARN":
			style = styles.WarningText
		case "DEBUG":
			style = styles.FaintText
		}
		out = append(out, style.Render(line))
	}
	return strings.Join(out, "\n")
}

// handleLogsKey processes keyboard input for the logs view.
func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.currentView = ViewList
		return m, nil
	case key.Matches(msg, m.keys.ToggleFollow):
		m.logState.follow = !m.logState.follow
		if m.logState.follow {
			m.logViewport.GotoBottom()
		}
		return m, nil
	case key.Matches(msg, m.keys.CycleLevel):
		m.logState.level = nextLevel(m.logState.level)
		m.applyLogFilter()
		return m, nil
	case key.Matches(msg, m.keys.Top):
		m.logState.follow = false
		m.logViewport.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.logViewport.GotoBottom()
		return m, nil
	case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.PageUp):
		m.logState.follow = false
	}

	var cmd tea.Cmd
	m.logViewport, cmd = m.logViewport.Update(msg)
	return m, cmd
}

func nextLevel(current string) string {
	for i, level := range logLevels {
		if level == current {
			return logLevels[(i+1)%len(logLevels)]
		}
	}
	return logLevels[0]
}

// renderLogs renders the log view.
func (m Model) renderLogs() string {
	bg := NewBgStyle(m.theme.Background)
	styles := m.theme.Styles().WithBackground(m.theme.Background)

	title := "Log"
	if m.logState.level != "DEBUG" {
		title = fmt.Sprintf("Log (%s+)", m.logState.level)
	}
	box := m.renderBox(title, m.logViewport.View(), m.width, m.height-3, true)

	autoTail := "off"
	if m.logState.follow {
		autoTail = "on"
	}
	status := bg.Render(fmt.Sprintf("%d lines auto-tail %s", len(m.logState.lines), autoTail), styles.FaintText) +
		bg.Spaces(2) + bg.Render(truncate(m.logPath, 60), styles.MutedText)
	if m.logState.err != nil {
		status += bg.Spaces(2) + bg.Render(m.logState.err.Error(), styles.DangerText)
	}
	return box + "\n" + status
}
