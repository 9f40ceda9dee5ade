package state

import (
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/five82/shinyhunt/internal/dex"
)

// Detail is per-species data fetched after the listing.
type Detail struct {
	Types []string
	Color string
}

// Snapshot represents the latest listing data available to the UI.
type Snapshot struct {
	Pokedex             dex.Pokedex
	Entries             []dex.Entry
	Details             map[int]Detail // keyed by national id
	Loading             bool
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive load failures
}

// IsOffline returns true when PokeAPI has been unreachable for multiple loads.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// DetailProgress reports how many entries have details loaded.
func (s Snapshot) DetailProgress() (loaded, total int) {
	for _, e := range s.Entries {
		if _, ok := s.Details[e.NationalID]; ok {
			loaded++
		}
	}
	return loaded, len(s.Entries)
}

// NationalIDs returns the national ids of the listing in entry order.
func (s Snapshot) NationalIDs() []int {
	ids := make([]int, 0, len(s.Entries))
	for _, e := range s.Entries {
		if e.NationalID > 0 {
			ids = append(ids, e.NationalID)
		}
	}
	return ids
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Begin marks a load of p as in progress. Switching Pokédex drops the
// previous listing.
func (s *Store) Begin(p dex.Pokedex) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshot.Pokedex.ID != p.ID {
		s.snapshot.Entries = nil
		s.snapshot.Details = nil
	}
	s.snapshot.Pokedex = p
	s.snapshot.Loading = true
}

// Update replaces the listing. When err is non-nil the previous data is
// kept but the error is recorded for visibility.
func (s *Store) Update(p dex.Pokedex, entries []dex.Entry, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.LastUpdated = time.Now()
		s.snapshot.ConsecutiveFailures++
		return
	}

	if s.snapshot.Pokedex.ID != p.ID {
		s.snapshot.Details = nil
	}
	s.snapshot.Pokedex = p
	s.snapshot.Entries = cloneEntries(entries)
	s.snapshot.LastError = nil
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures = 0
}

// AddDetails merges species details. Details for a Pokédex that is no
// longer current are dropped.
func (s *Store) AddDetails(pokedexID int, details map[int]Detail) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshot.Pokedex.ID != pokedexID || len(details) == 0 {
		return
	}
	if s.snapshot.Details == nil {
		s.snapshot.Details = make(map[int]Detail, len(details))
	}
	maps.Copy(s.snapshot.Details, details)
	s.snapshot.LastUpdated = time.Now()
}

// Finish clears the loading flag.
func (s *Store) Finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Loading = false
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Entries = cloneEntries(s.snapshot.Entries)
	if s.snapshot.Details != nil {
		snap.Details = maps.Clone(s.snapshot.Details)
	}
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func cloneEntries(items []dex.Entry) []dex.Entry {
	if len(items) == 0 {
		return nil
	}
	dup := make([]dex.Entry, len(items))
	copy(dup, items)
	return dup
}
