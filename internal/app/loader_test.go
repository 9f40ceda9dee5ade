package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/five82/shinyhunt/internal/dex"
	"github.com/five82/shinyhunt/internal/state"
)

func TestCalculateBackoff(t *testing.T) {
	baseInterval := 2 * time.Second

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, 2 * time.Second},
		{"negative failures", -1, 2 * time.Second},
		{"one failure", 1, 4 * time.Second},
		{"two failures", 2, 8 * time.Second},
		{"three failures", 3, 16 * time.Second},
		{"four failures capped", 4, 30 * time.Second}, // Would be 32s, capped to 30s
		{"many failures capped", 10, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateBackoff(tt.failures, baseInterval)
			if got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, baseInterval, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff_MaxCap(t *testing.T) {
	baseInterval := 2 * time.Second
	for failures := 0; failures <= 80; failures++ {
		got := calculateBackoff(failures, baseInterval)
		if got > maxBackoff {
			t.Errorf("calculateBackoff(%d, %v) = %v, exceeds maxBackoff %v", failures, baseInterval, got, maxBackoff)
		}
	}
}

// fakeFetcher serves pokedex listings and per-id pokemon/species bodies.
type fakeFetcher struct {
	mu        sync.Mutex
	listings  map[string]string
	failGet   int // number of Get calls to fail before succeeding
	getCalls  int
	batches   [][]string
	failBatch bool
}

func (f *fakeFetcher) Get(_ context.Context, path string) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.failGet > 0 {
		f.failGet--
		return nil, errors.New("upstream down")
	}
	body, ok := f.listings[path]
	if !ok {
		return nil, fmt.Errorf("no listing %s", path)
	}
	return json.RawMessage(body), nil
}

func (f *fakeFetcher) Batch(_ context.Context, paths []string) ([]json.RawMessage, error) {
	f.mu.Lock()
	f.batches = append(f.batches, paths)
	f.mu.Unlock()
	if f.failBatch {
		return nil, context.Canceled
	}
	out := make([]json.RawMessage, len(paths))
	for i, p := range paths {
		var id int
		switch {
		case strings.HasPrefix(p, "pokemon/"):
			fmt.Sscanf(p, "pokemon/%d/", &id)
			if id == 907 {
				continue
			}
			out[i] = json.RawMessage(fmt.Sprintf(`{"id":%d,"types":[{"slot":1,"type":{"name":"grass"}}]}`, id))
		case strings.HasPrefix(p, "pokemon-species/"):
			fmt.Sscanf(p, "pokemon-species/%d/", &id)
			out[i] = json.RawMessage(fmt.Sprintf(`{"id":%d,"color":{"name":"green"}}`, id))
		}
	}
	return out, nil
}

func listing(n int, firstID int) string {
	var entries []string
	for i := 0; i < n; i++ {
		entries = append(entries, fmt.Sprintf(
			`{"entry_number":%d,"pokemon_species":{"name":"mon%d","url":"https://pokeapi.co/api/v2/pokemon-species/%d/"}}`,
			i+1, i+1, firstID+i))
	}
	return `{"id":31,"name":"paldea","pokemon_entries":[` + strings.Join(entries, ",") + `]}`
}

func newTestLoader(f *fakeFetcher, store *state.Store) *Loader {
	l := NewLoader(f, store, nil)
	l.retryBase = 5 * time.Millisecond
	l.chunkPause = time.Millisecond
	return l
}

func TestLoader_LoadsListingAndDetailsInChunks(t *testing.T) {
	paldea := dex.Default()
	f := &fakeFetcher{listings: map[string]string{paldea.Path(): listing(45, 906)}}
	store := &state.Store{}
	l := newTestLoader(f, store)

	next, err := l.load(context.Background(), paldea)
	if err != nil || next != nil {
		t.Fatalf("load = %v, %v", next, err)
	}

	snap := store.Snapshot()
	if len(snap.Entries) != 45 || snap.Entries[0].NationalID != 906 || snap.Entries[0].Name != "mon1" {
		t.Fatalf("entries = %#v", snap.Entries[:1])
	}
	if snap.Loading {
		t.Fatal("Loading = true after load")
	}
	if len(f.batches) != 3 || len(f.batches[0]) != 40 || len(f.batches[2]) != 10 {
		t.Fatalf("batches = %d, first = %d", len(f.batches), len(f.batches[0]))
	}
	if f.batches[0][0] != "pokemon/906/" || f.batches[0][1] != "pokemon-species/906/" {
		t.Fatalf("batch paths = %v", f.batches[0][:2])
	}

	// 907's pokemon record failed, so it has no detail.
	loaded, total := snap.DetailProgress()
	if loaded != 44 || total != 45 {
		t.Fatalf("DetailProgress = %d/%d, want 44/45", loaded, total)
	}
	if d := snap.Details[906]; d.Color != "green" || len(d.Types) != 1 || d.Types[0] != "grass" {
		t.Fatalf("detail = %#v", d)
	}
}

func TestLoader_SwitchRequestInterruptsDetails(t *testing.T) {
	paldea, _ := dex.Lookup("paldea")
	kitakami, _ := dex.Lookup("kitakami")
	f := &fakeFetcher{listings: map[string]string{paldea.Path(): listing(60, 1)}}
	l := newTestLoader(f, &state.Store{})

	l.Request(kitakami)
	l.Request(kitakami)
	next, err := l.load(context.Background(), paldea)
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}
	if next == nil || next.ID != kitakami.ID {
		t.Fatalf("next = %#v, want kitakami", next)
	}
	if len(f.batches) != 0 {
		t.Fatalf("batches = %d, want none after switch", len(f.batches))
	}
}

func TestLoader_RetriesListingWithBackoff(t *testing.T) {
	paldea := dex.Default()
	f := &fakeFetcher{listings: map[string]string{paldea.Path(): listing(3, 1)}, failGet: 2}
	store := &state.Store{}
	l := newTestLoader(f, store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	l.Start(ctx, paldea)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if snap := store.Snapshot(); len(snap.Entries) == 3 && snap.ConsecutiveFailures == 0 {
			f.mu.Lock()
			calls := f.getCalls
			f.mu.Unlock()
			if calls != 3 {
				t.Fatalf("Get calls = %d, want 3", calls)
			}
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("listing never loaded: %#v", store.Snapshot())
}

func TestLoader_RecordsFailures(t *testing.T) {
	paldea := dex.Default()
	f := &fakeFetcher{failGet: 100}
	store := &state.Store{}
	l := newTestLoader(f, store)

	if _, err := l.load(context.Background(), paldea); err == nil {
		t.Fatal("load returned nil error")
	}
	if _, err := l.load(context.Background(), paldea); err == nil {
		t.Fatal("load returned nil error")
	}
	snap := store.Snapshot()
	if !snap.IsOffline() || snap.LastError == nil {
		t.Fatalf("snapshot = %#v, want offline with error", snap)
	}
}

func TestLoader_BatchErrorAbortsLoad(t *testing.T) {
	paldea := dex.Default()
	f := &fakeFetcher{listings: map[string]string{paldea.Path(): listing(5, 1)}, failBatch: true}
	l := newTestLoader(f, &state.Store{})
	if _, err := l.load(context.Background(), paldea); err == nil {
		t.Fatal("load returned nil error on batch failure")
	}
}
