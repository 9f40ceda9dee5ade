package caught

// Tally counts progress over a set of ids.
type Tally struct {
	Caught int
	Shiny  int
	Total  int
}

// Percent returns caught as a percentage of Total, or 0 for an empty set.
func (t Tally) Percent() float64 {
	if t.Total == 0 {
		return 0
	}
	return float64(t.Caught) * 100 / float64(t.Total)
}

// CaughtIDs returns ids whose state is Caught or Shiny, ascending.
func (s *Store) CaughtIDs() []int {
	p := s.snapshot()
	var ids []int
	for id := 1; id <= MaxID; id++ {
		if p.get(id) != None {
			ids = append(ids, id)
		}
	}
	return ids
}

// ShinyIDs returns ids whose state is Shiny, ascending.
func (s *Store) ShinyIDs() []int {
	p := s.snapshot()
	var ids []int
	for id := 1; id <= MaxID; id++ {
		if p.get(id) == Shiny {
			ids = append(ids, id)
		}
	}
	return ids
}

func (s *Store) CaughtCount() int {
	return len(s.CaughtIDs())
}

func (s *Store) ShinyCount() int {
	return len(s.ShinyIDs())
}

// Counts tallies the given ids. Out-of-range ids count toward Total only.
func (s *Store) Counts(ids []int) Tally {
	p := s.snapshot()
	t := Tally{Total: len(ids)}
	for _, id := range ids {
		if checkID(id) != nil {
			continue
		}
		switch p.get(id) {
		case Caught:
			t.Caught++
		case Shiny:
			t.Caught++
			t.Shiny++
		}
	}
	return t
}

// RecentlyCaught returns up to n of the most recent catches, newest first,
// skipping ids that have since been released.
func (s *Store) RecentlyCaught(n int) []RecentCatch {
	if n <= 0 {
		return nil
	}
	s.mu.Lock()
	log := s.readRecentLocked()
	p, err := s.readLocked()
	s.mu.Unlock()
	if err != nil {
		s.logger.Warn("caught state unavailable", "error", err)
		return nil
	}

	out := make([]RecentCatch, 0, n)
	for i := len(log) - 1; i >= 0 && len(out) < n; i-- {
		entry := log[i]
		if checkID(entry.ID) != nil || p.get(entry.ID) == None {
			continue
		}
		out = append(out, entry)
	}
	return out
}
