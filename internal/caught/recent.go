package caught

import (
	"encoding/json"
	"time"
)

// RecentCatch is one entry of the recency log.
type RecentCatch struct {
	ID int       `json:"id"`
	At time.Time `json:"at"`
}

func (s *Store) readRecentLocked() []RecentCatch {
	value, ok, err := s.storage.Get(RecentKey)
	if err != nil {
		s.logger.Warn("failed to read recent catches", "error", err)
		return nil
	}
	if !ok {
		return nil
	}
	var log []RecentCatch
	if err := json.Unmarshal([]byte(value), &log); err != nil {
		s.logger.Warn("discarding corrupt recent catches", "key", RecentKey, "error", err)
		return nil
	}
	return log
}

// recordCatchesLocked appends ids that moved from None to a caught state.
// A nil ids slice means every id may have changed.
func (s *Store) recordCatchesLocked(before, after packed, ids []int) {
	var caught []int
	consider := func(id int) {
		if before.get(id) == None && after.get(id) != None {
			caught = append(caught, id)
		}
	}
	if ids == nil {
		for id := 1; id <= MaxID; id++ {
			consider(id)
		}
	} else {
		for _, id := range ids {
			consider(id)
		}
	}
	if len(caught) == 0 {
		return
	}

	at := s.now().UTC()
	log := s.readRecentLocked()
	for _, id := range caught {
		log = appendRecent(log, RecentCatch{ID: id, At: at})
	}
	if len(log) > s.recentCap {
		log = log[len(log)-s.recentCap:]
	}
	data, err := json.Marshal(log)
	if err != nil {
		s.logger.Warn("failed to encode recent catches", "error", err)
		return
	}
	if err := s.storage.Set(RecentKey, string(data)); err != nil {
		s.logger.Warn("failed to write recent catches", "error", err)
	}
}

// appendRecent moves an existing entry for the same id to the end.
func appendRecent(log []RecentCatch, entry RecentCatch) []RecentCatch {
	for i := range log {
		if log[i].ID == entry.ID {
			log = append(log[:i], log[i+1:]...)
			break
		}
	}
	return append(log, entry)
}
