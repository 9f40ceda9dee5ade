package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/shinyhunt/internal/caught"
	"github.com/five82/shinyhunt/internal/dex"
	"github.com/five82/shinyhunt/internal/events"
	"github.com/five82/shinyhunt/internal/prefs"
	"github.com/five82/shinyhunt/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewList View = iota
	ViewLogs
)

// Switcher accepts Pokédex switch requests; the app loader implements it.
type Switcher interface {
	Request(p dex.Pokedex)
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Caught    *caught.Store
	Listing   *state.Store
	Loader    Switcher
	Pokedex   dex.Pokedex
	ThemeName string
	PrefsPath string
	LogPath   string
	Tick      time.Duration
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	caught    *caught.Store
	listing   *state.Store
	loader    Switcher
	prefsPath string
	logPath   string
	tick      time.Duration
	keys      keyMap

	// UI state
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool
	showHelp    bool
	errorMsg    string

	// Listing state
	pokedex  dex.Pokedex
	snapshot state.Snapshot

	// Caught state, re-read on every store event
	states      map[int]caught.State
	tally       caught.Tally
	overall     caught.Tally
	recent      []caught.RecentCatch
	lastOrigin  events.Origin
	lastChanged time.Time

	// List state
	selectedRow int
	offset      int
	search      searchState

	progress    progress.Model
	logViewport viewport.Model
	logState    logState
}

type searchState struct {
	active bool
	input  textinput.Model
	query  string
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	tick := opts.Tick
	if tick == 0 {
		tick = time.Second
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = prefs.Defaults().Theme
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	pokedex := opts.Pokedex
	if pokedex.ID == 0 {
		pokedex = dex.Default()
	}

	input := textinput.New()
	input.Placeholder = "name or number"
	input.CharLimit = 40
	input.Prompt = "/"

	theme := GetTheme(themeName)
	m := Model{
		ctx:         ctx,
		caught:      opts.Caught,
		listing:     opts.Listing,
		loader:      opts.Loader,
		prefsPath:   prefsPath,
		logPath:     opts.LogPath,
		tick:        tick,
		keys:        DefaultKeyMap(),
		theme:       theme,
		currentView: ViewList,
		pokedex:     pokedex,
		search:      searchState{input: input},
		progress:    newProgress(theme),
		logState:    newLogState(),
	}
	m.refreshCaught()
	return m
}

func newProgress(theme Theme) progress.Model {
	return progress.New(
		progress.WithSolidFill(theme.Accent),
		progress.WithoutPercentage(),
		progress.WithWidth(20),
	)
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.tick)}
	if m.listing != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.listing))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.clampSelection()
		m.updateLogViewport()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		m.tally = m.listingTally()
		m.clampSelection()
		return m, nil

	case caughtChangedMsg:
		m.lastOrigin = msg.Origin
		m.lastChanged = time.Now()
		m.refreshCaught()
		return m, nil

	case logLinesMsg:
		m.handleLogLines(msg)
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if m.search.active {
		return m.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.progress = newProgress(m.theme)
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.Logs):
		if m.currentView == ViewLogs {
			m.currentView = ViewList
			return m, nil
		}
		m.currentView = ViewLogs
		m.updateLogViewport()
		return m, m.refreshLogs()

	case key.Matches(msg, m.keys.Pokedex1):
		m.switchPokedex(0)
		return m, nil
	case key.Matches(msg, m.keys.Pokedex2):
		m.switchPokedex(1)
		return m, nil
	case key.Matches(msg, m.keys.Pokedex3):
		m.switchPokedex(2)
		return m, nil
	case key.Matches(msg, m.keys.PrevPokedex):
		all := dex.All()
		m.switchPokedex((dex.Index(m.pokedex.Name) + len(all) - 1) % len(all))
		return m, nil
	case key.Matches(msg, m.keys.NextPokedex):
		m.switchPokedex((dex.Index(m.pokedex.Name) + 1) % len(dex.All()))
		return m, nil
	}

	switch m.currentView {
	case ViewLogs:
		return m.handleLogsKey(msg)
	default:
		return m.handleListKey(msg)
	}
}

// switchPokedex asks the loader for the Pokédex at index i of dex.All.
func (m *Model) switchPokedex(i int) {
	all := dex.All()
	if i < 0 || i >= len(all) || all[i].ID == m.pokedex.ID {
		return
	}
	m.pokedex = all[i]
	m.selectedRow = 0
	m.offset = 0
	m.search.query = ""
	m.search.input.SetValue("")
	if m.loader != nil {
		m.loader.Request(m.pokedex)
	}
	m.savePrefs()
}

func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name, Pokedex: m.pokedex.Name}); err != nil {
		m.errorMsg = "save prefs: " + err.Error()
	}
}

// refreshCaught reads the caught state once; every tally the UI renders
// is derived from that read so rows and counts never disagree.
func (m *Model) refreshCaught() {
	if m.caught == nil {
		return
	}
	m.states = m.caught.AllStates()
	m.overall = tallyStates(m.states, nil)
	m.recent = m.recent[:0:0]
	for _, r := range m.caught.RecentlyCaught(recentLimit) {
		if m.states[r.ID] != caught.None {
			m.recent = append(m.recent, r)
		}
	}
	m.tally = m.listingTally()
}

// listingTally counts progress over the current listing; it is empty
// until the listing for the selected Pokédex has loaded.
func (m Model) listingTally() caught.Tally {
	if m.snapshot.Pokedex.ID != m.pokedex.ID || len(m.snapshot.Entries) == 0 {
		return caught.Tally{}
	}
	return tallyStates(m.states, m.snapshot.NationalIDs())
}

// tallyStates counts states over ids, or over every national id when ids
// is nil.
func tallyStates(states map[int]caught.State, ids []int) caught.Tally {
	var t caught.Tally
	count := func(st caught.State) {
		switch st {
		case caught.Caught:
			t.Caught++
		case caught.Shiny:
			t.Caught++
			t.Shiny++
		}
	}
	if ids == nil {
		t.Total = caught.MaxID
		for _, st := range states {
			count(st)
		}
		return t
	}
	t.Total = len(ids)
	for _, id := range ids {
		count(states[id])
	}
	return t
}

// handleTick processes the refresh tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	if m.listing != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.listing))
	}
	if m.currentView == ViewLogs && m.logState.follow {
		if cmd := m.refreshLogs(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	cmds = append(cmds, tickCmd(m.tick))
	return m, tea.Batch(cmds...)
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	switch m.currentView {
	case ViewLogs:
		b.WriteString(m.renderLogs())
	default:
		b.WriteString(m.renderList())
	}
	return b.String()
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type caughtChangedMsg events.Event

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

// Run starts the Bubble Tea program. The caught store's subscribers are
// wired before the program starts and removed when it exits.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	if opts.Caught != nil {
		unsubscribe := opts.Caught.Subscribe(func(e events.Event) {
			// Handlers run on the writer's goroutine, which may be the
			// program's own Update.
			go p.Send(caughtChangedMsg(e))
		})
		defer unsubscribe()
	}
	_, err := p.Run()
	if err != nil && opts.Context != nil && opts.Context.Err() != nil {
		return nil
	}
	return err
}
