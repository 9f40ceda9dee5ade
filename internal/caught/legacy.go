package caught

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/five82/shinyhunt/internal/bitcodec"
	"github.com/five82/shinyhunt/internal/events"
)

// LegacyPrefix prefixes the one-key-per-entry layout used before the
// packed array, e.g. "pokemon-caught-025" = "shiny". The number is the
// Paldea entry number, not the national id.
const LegacyPrefix = "pokemon-caught-"

// EntryResolver maps a legacy entry number to a national id.
type EntryResolver func(entry int) (nationalID int, ok bool)

// HasLegacy reports whether any legacy entry keys remain.
func (s *Store) HasLegacy() (bool, error) {
	keys, err := s.storage.Keys(LegacyPrefix)
	if err != nil {
		return false, fmt.Errorf("list legacy keys: %w", err)
	}
	for _, key := range keys {
		if _, ok := legacyEntryNumber(key); ok {
			return true, nil
		}
	}
	return false, nil
}

func legacyEntryNumber(key string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimPrefix(key, LegacyPrefix))
	return n, err == nil
}

// MigrateLegacy folds legacy entry keys into the packed array with one
// write, then removes them. Entry numbers go through resolve; entries it
// cannot map are dropped. Packed state wins where both exist. It returns
// the number of legacy entries applied.
func (s *Store) MigrateLegacy(resolve EntryResolver) (int, error) {
	if resolve == nil {
		return 0, fmt.Errorf("migrate legacy state: no entry resolver")
	}
	s.mu.Lock()
	keys, err := s.storage.Keys(LegacyPrefix)
	if err != nil {
		s.mu.Unlock()
		return 0, fmt.Errorf("list legacy keys: %w", err)
	}

	type legacyEntry struct {
		key   string
		id    int
		state State
	}
	var entries []legacyEntry
	for _, key := range keys {
		number, ok := legacyEntryNumber(key)
		if !ok {
			continue
		}
		value, ok, err := s.storage.Get(key)
		if err != nil {
			s.mu.Unlock()
			return 0, fmt.Errorf("read legacy key %s: %w", key, err)
		}
		if !ok {
			continue
		}
		entry := legacyEntry{key: key}
		id, resolved := resolve(number)
		state, err := ParseState(value)
		if resolved && err == nil && checkID(id) == nil {
			entry.id, entry.state = id, state
		} else {
			s.logger.Warn("dropping unusable legacy entry", "key", key, "value", value)
		}
		entries = append(entries, entry)
	}
	if len(entries) == 0 {
		s.mu.Unlock()
		return 0, nil
	}

	p, err := s.readLocked()
	if err != nil {
		s.mu.Unlock()
		return 0, err
	}
	applied := 0
	var changed []int
	for _, e := range entries {
		if e.state == None || p.get(e.id) != None {
			continue
		}
		p.set(e.id, e.state)
		applied++
		changed = append(changed, e.id)
	}
	if applied > 0 {
		encoded := bitcodec.Encode(p)
		if err := s.storage.Set(StateKey, encoded); err != nil {
			s.mu.Unlock()
			return 0, fmt.Errorf("write caught state: %w", err)
		}
		s.lastSeen, s.seenPresent = encoded, true
	}
	for _, e := range entries {
		if err := s.storage.Remove(e.key); err != nil {
			s.logger.Warn("failed to remove legacy key", "key", e.key, "error", err)
		}
	}
	s.mu.Unlock()

	s.logger.Info("migrated legacy caught state", "entries", len(entries), "applied", applied)
	if applied > 0 {
		s.bus.Publish(events.Event{Origin: events.Local, IDs: changed})
	}
	return applied, nil
}
