package ui

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/shinyhunt/internal/caught"
	"github.com/five82/shinyhunt/internal/dex"
	"github.com/five82/shinyhunt/internal/events"
	"github.com/five82/shinyhunt/internal/prefs"
	"github.com/five82/shinyhunt/internal/state"
	"github.com/five82/shinyhunt/internal/storage"
)

type recordingSwitcher struct {
	requests []dex.Pokedex
}

func (r *recordingSwitcher) Request(p dex.Pokedex) {
	r.requests = append(r.requests, p)
}

type fixture struct {
	model     Model
	caught    *caught.Store
	listing   *state.Store
	switcher  *recordingSwitcher
	prefsPath string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	paldea := dex.Default()
	listing := &state.Store{}
	listing.Begin(paldea)
	listing.Update(paldea, []dex.Entry{
		{Number: 1, Name: "sprigatito", NationalID: 906},
		{Number: 2, Name: "floragato", NationalID: 907},
		{Number: 3, Name: "meowscarada", NationalID: 908},
		{Number: 4, Name: "fuecoco", NationalID: 909},
		{Number: 114, Name: "oddish", NationalID: 43},
	}, nil)
	listing.AddDetails(paldea.ID, map[int]state.Detail{906: {Types: []string{"grass"}, Color: "green"}})
	listing.Finish()

	store := caught.NewStore(storage.NewMemoryStorage())
	f := &fixture{
		caught:    store,
		listing:   listing,
		switcher:  &recordingSwitcher{},
		prefsPath: filepath.Join(t.TempDir(), "prefs.toml"),
	}
	m := New(Options{
		Caught:    store,
		Listing:   listing,
		Loader:    f.switcher,
		Pokedex:   paldea,
		PrefsPath: f.prefsPath,
		LogPath:   filepath.Join(t.TempDir(), "missing.log"),
	})
	f.model = m
	f.send(tea.WindowSizeMsg{Width: 120, Height: 30})
	f.send(snapshotMsg(listing.Snapshot()))
	return f
}

func (f *fixture) send(msg tea.Msg) tea.Cmd {
	next, cmd := f.model.Update(msg)
	f.model = next.(Model)
	return cmd
}

func (f *fixture) press(keys ...string) {
	for _, k := range keys {
		switch k {
		case "space":
			f.send(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
		case "enter":
			f.send(tea.KeyMsg{Type: tea.KeyEnter})
		case "esc":
			f.send(tea.KeyMsg{Type: tea.KeyEsc})
		default:
			f.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
		}
	}
}

// sync delivers the change event the program would receive from the store.
func (f *fixture) sync() {
	f.send(caughtChangedMsg(events.Event{Origin: events.Local}))
}

func TestCycleSelectedEntry(t *testing.T) {
	f := newFixture(t)

	f.press("space")
	if got, _ := f.caught.State(906); got != caught.Caught {
		t.Fatalf("State(906) = %v, want caught", got)
	}
	f.press("space")
	if got, _ := f.caught.State(906); got != caught.Shiny {
		t.Fatalf("State(906) = %v, want shiny", got)
	}
	f.press("space")
	if got, _ := f.caught.State(906); got != caught.None {
		t.Fatalf("State(906) = %v, want none", got)
	}
}

func TestMarkKeysAndNavigation(t *testing.T) {
	f := newFixture(t)

	f.press("j", "c", "j", "s", "G", "c", "x")
	states := f.caught.AllStates()
	if states[907] != caught.Caught || states[908] != caught.Shiny {
		t.Fatalf("states = %v", states)
	}
	if states[43] != caught.None {
		t.Fatalf("State(43) = %v, want cleared", states[43])
	}

	f.press("g")
	if f.model.selectedRow != 0 {
		t.Fatalf("selectedRow = %d after g, want 0", f.model.selectedRow)
	}
	f.press("k")
	if f.model.selectedRow != 0 {
		t.Fatalf("selectedRow = %d after k at top, want 0", f.model.selectedRow)
	}
}

func TestSubscribersRereadOnChange(t *testing.T) {
	f := newFixture(t)

	var received []events.Event
	unsubscribe := f.caught.Subscribe(func(e events.Event) { received = append(received, e) })
	defer unsubscribe()

	f.press("space")
	if len(received) != 1 || received[0].Origin != events.Local {
		t.Fatalf("received = %#v, want one local event", received)
	}

	// A write from elsewhere is only visible after the change message.
	if err := f.caught.SetState(908, caught.Shiny); err != nil {
		t.Fatal(err)
	}
	f.sync()

	if f.model.states[906] != caught.Caught || f.model.states[908] != caught.Shiny {
		t.Fatalf("model states = %v", f.model.states)
	}
	if f.model.tally != (caught.Tally{Caught: 2, Shiny: 1, Total: 5}) {
		t.Fatalf("tally = %+v", f.model.tally)
	}
	if f.model.overall.Caught != 2 || f.model.overall.Total != caught.MaxID {
		t.Fatalf("overall = %+v", f.model.overall)
	}
	if len(f.model.recent) != 2 || f.model.recent[0].ID != 908 {
		t.Fatalf("recent = %+v", f.model.recent)
	}
}

// racingStorage lets another writer land right after the next state read.
type racingStorage struct {
	*storage.MemoryStorage
	afterRead func()
}

func (r *racingStorage) Get(key string) (string, bool, error) {
	value, ok, err := r.MemoryStorage.Get(key)
	if key == caught.StateKey && r.afterRead != nil {
		next := r.afterRead
		r.afterRead = nil
		next()
	}
	return value, ok, err
}

func TestTalliesMatchRenderedStates(t *testing.T) {
	st := &racingStorage{MemoryStorage: storage.NewMemoryStorage()}
	store := caught.NewStore(st)
	if err := store.Apply([]int{906, 907}, caught.Caught); err != nil {
		t.Fatal(err)
	}
	other := caught.NewStore(st.MemoryStorage)
	m := New(Options{Caught: store, PrefsPath: filepath.Join(t.TempDir(), "prefs.toml")})

	st.afterRead = func() {
		if err := other.SetState(908, caught.Shiny); err != nil {
			t.Error(err)
		}
	}
	next, _ := m.Update(caughtChangedMsg(events.Event{Origin: events.External}))
	m = next.(Model)

	want := tallyStates(m.states, nil)
	if m.overall != want {
		t.Fatalf("overall = %+v, states give %+v", m.overall, want)
	}
	for _, r := range m.recent {
		if m.states[r.ID] == caught.None {
			t.Fatalf("recent lists %d, which the rendered states show as uncaught", r.ID)
		}
	}
}

func TestTallyStates(t *testing.T) {
	states := map[int]caught.State{1: caught.Caught, 4: caught.Shiny, 7: caught.Caught}
	if got := tallyStates(states, nil); got != (caught.Tally{Caught: 3, Shiny: 1, Total: caught.MaxID}) {
		t.Fatalf("national tally = %+v", got)
	}
	if got := tallyStates(states, []int{4, 5, 6}); got != (caught.Tally{Caught: 1, Shiny: 1, Total: 3}) {
		t.Fatalf("listing tally = %+v", got)
	}
}

func TestCatchAndReleaseWholeListing(t *testing.T) {
	f := newFixture(t)

	f.press("C")
	f.sync()
	if f.model.tally.Caught != 5 {
		t.Fatalf("tally after C = %+v", f.model.tally)
	}
	if got, _ := f.caught.State(1); got != caught.None {
		t.Fatalf("State(1) = %v, species outside the listing changed", got)
	}

	f.press("X")
	f.sync()
	if f.model.tally.Caught != 0 || f.caught.CaughtCount() != 0 {
		t.Fatalf("tally after X = %+v", f.model.tally)
	}
}

func TestSearchFiltersList(t *testing.T) {
	f := newFixture(t)

	f.press("/", "f", "u", "e")
	if !f.model.search.active || f.model.search.query != "fue" {
		t.Fatalf("search = %+v", f.model.search)
	}
	entries := f.model.visibleEntries()
	if len(entries) != 1 || entries[0].Name != "fuecoco" {
		t.Fatalf("visible = %+v", entries)
	}

	f.press("enter", "c")
	if got, _ := f.caught.State(909); got != caught.Caught {
		t.Fatalf("State(909) = %v, want caught via filtered list", got)
	}

	f.press("/", "esc")
	if f.model.search.query != "" || len(f.model.visibleEntries()) != 5 {
		t.Fatalf("search not cleared: %+v", f.model.search)
	}

	f.press("/", "1", "1", "4", "enter")
	entries = f.model.visibleEntries()
	if len(entries) != 1 || entries[0].NationalID != 43 {
		t.Fatalf("number search = %+v", entries)
	}
}

func TestSwitchPokedexPersistsPrefs(t *testing.T) {
	f := newFixture(t)

	f.press("2")
	if len(f.switcher.requests) != 1 || f.switcher.requests[0].Name != "kitakami" {
		t.Fatalf("requests = %+v", f.switcher.requests)
	}
	if got := prefs.Load(f.prefsPath); got.Pokedex != "kitakami" {
		t.Fatalf("saved prefs = %+v", got)
	}
	// The Paldea snapshot no longer matches, so nothing is listed.
	if n := len(f.model.visibleEntries()); n != 0 {
		t.Fatalf("visible entries = %d, want 0 while loading", n)
	}

	f.press("2")
	if len(f.switcher.requests) != 1 {
		t.Fatal("re-selecting the current Pokédex sent a request")
	}

	f.press("]")
	if f.model.pokedex.Name != "blueberry-academy" {
		t.Fatalf("pokedex after ] = %s", f.model.pokedex.Name)
	}
	f.press("]")
	if f.model.pokedex.Name != "paldea" {
		t.Fatalf("pokedex after wrap = %s", f.model.pokedex.Name)
	}
	f.press("[")
	if f.model.pokedex.Name != "blueberry-academy" {
		t.Fatalf("pokedex after [ = %s", f.model.pokedex.Name)
	}
}

func TestCycleThemePersists(t *testing.T) {
	f := newFixture(t)

	f.press("T")
	if f.model.theme.Name != "Kanagawa" {
		t.Fatalf("theme = %s", f.model.theme.Name)
	}
	got := prefs.Load(f.prefsPath)
	if got.Theme != "Kanagawa" || got.Pokedex != "paldea" {
		t.Fatalf("saved prefs = %+v", got)
	}
}

func TestLogsViewFiltersByLevel(t *testing.T) {
	f := newFixture(t)

	f.press("l")
	if f.model.currentView != ViewLogs {
		t.Fatal("l did not open logs")
	}
	f.send(logLinesMsg{lines: []string{
		"time=1 level=DEBUG msg=a",
		"time=2 level=INFO msg=b",
		"time=3 level=WARN msg=c",
	}})
	if len(f.model.logState.lines) != 3 {
		t.Fatalf("lines = %v", f.model.logState.lines)
	}

	f.press("f", "f")
	if f.model.logState.level != "WARN" || len(f.model.logState.lines) != 1 {
		t.Fatalf("level %s lines %v", f.model.logState.level, f.model.logState.lines)
	}

	f.press("space")
	if f.model.logState.follow {
		t.Fatal("space did not pause follow")
	}
	if got, _ := f.caught.State(906); got != caught.None {
		t.Fatal("space in logs view changed caught state")
	}

	f.press("esc")
	if f.model.currentView != ViewList {
		t.Fatal("esc did not return to list")
	}
}

func TestHelpOverlay(t *testing.T) {
	f := newFixture(t)

	f.press("?")
	if !f.model.showHelp || !strings.Contains(f.model.View(), "Keyboard Shortcuts") {
		t.Fatal("help overlay not shown")
	}
	f.press("c")
	if f.model.showHelp {
		t.Fatal("any key should close help")
	}
	if got, _ := f.caught.State(906); got != caught.None {
		t.Fatal("closing help also marked an entry")
	}
}

func TestViewRendersListAndStats(t *testing.T) {
	f := newFixture(t)
	f.press("c")
	f.sync()

	out := f.model.View()
	for _, want := range []string{"shinyhunt", "Paldea", "Sprigatito", "Meowscarada", "Progress", "Exclusives", "Recent"} {
		if !strings.Contains(out, want) {
			t.Fatalf("view missing %q", want)
		}
	}
}

func TestQuitKeys(t *testing.T) {
	f := newFixture(t)
	cmd := f.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})
	if cmd == nil {
		t.Fatal("e returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("e did not quit")
	}
}
