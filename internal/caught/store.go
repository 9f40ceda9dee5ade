package caught

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/five82/shinyhunt/internal/bitcodec"
	"github.com/five82/shinyhunt/internal/events"
	"github.com/five82/shinyhunt/internal/storage"
)

const (
	// StateKey holds the packed array.
	StateKey = "pokemon-caught-state"
	// RecentKey holds the recency log.
	RecentKey = "pokemon-caught-recent"

	defaultRecentCap = 64
)

// Store reads and writes caught state through a storage.Storage.
type Store struct {
	storage   storage.Storage
	bus       *events.Bus
	logger    *slog.Logger
	now       func() time.Time
	recentCap int

	mu sync.Mutex
	// lastSeen is the persisted value as of this store's latest write or
	// observed external change; Watch uses it to drop echoes.
	lastSeen    string
	seenPresent bool
}

// Option configures a Store.
type Option func(*Store)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source used for exports and the recency log.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithBus publishes on bus instead of a private one.
func WithBus(bus *events.Bus) Option {
	return func(s *Store) {
		if bus != nil {
			s.bus = bus
		}
	}
}

// WithRecentCap bounds the recency log. Values below 1 keep the default.
func WithRecentCap(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.recentCap = n
		}
	}
}

// NewStore returns a Store over st.
func NewStore(st storage.Storage, opts ...Option) *Store {
	s := &Store{
		storage:   st,
		bus:       &events.Bus{},
		logger:    slog.New(slog.DiscardHandler),
		now:       time.Now,
		recentCap: defaultRecentCap,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Bus returns the bus the store publishes on.
func (s *Store) Bus() *events.Bus {
	return s.bus
}

// Subscribe registers h for every change, local or external.
func (s *Store) Subscribe(h events.Handler) func() {
	return s.bus.Subscribe(h)
}

// readLocked decodes the persisted array. Absent or corrupt values yield
// all None and reserved slots read as None; only storage I/O failures are
// returned.
func (s *Store) readLocked() (packed, error) {
	value, ok, err := s.storage.Get(StateKey)
	if err != nil {
		return nil, fmt.Errorf("read caught state: %w", err)
	}
	if !ok {
		return newPacked(), nil
	}
	words, err := bitcodec.DecodeStrict(value, WordCount)
	if err != nil {
		s.logger.Warn("discarding corrupt caught state", "key", StateKey, "error", err)
		return newPacked(), nil
	}
	p := packed(words)
	p.sanitize()
	return p, nil
}

// snapshot is the read path of getters: I/O failures degrade to all None.
func (s *Store) snapshot() packed {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.readLocked()
	if err != nil {
		s.logger.Warn("caught state unavailable", "error", err)
		return newPacked()
	}
	return p
}

// update performs one read, decode, mutate, encode and write cycle, then
// publishes a single local event carrying ids.
func (s *Store) update(ids []int, mutate func(p packed)) error {
	s.mu.Lock()
	before, err := s.readLocked()
	if err != nil {
		s.mu.Unlock()
		return err
	}
	after := before.clone()
	mutate(after)
	encoded := bitcodec.Encode(after)
	if err := s.storage.Set(StateKey, encoded); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("write caught state: %w", err)
	}
	s.lastSeen, s.seenPresent = encoded, true
	s.recordCatchesLocked(before, after, ids)
	s.mu.Unlock()

	s.bus.Publish(events.Event{Origin: events.Local, IDs: ids})
	return nil
}

// State returns the state of id.
func (s *Store) State(id int) (State, error) {
	if err := checkID(id); err != nil {
		return None, err
	}
	return s.snapshot().get(id), nil
}

// SetState stores state for id. Repeating a call writes identical bytes.
func (s *Store) SetState(id int, state State) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := checkState(state); err != nil {
		return err
	}
	return s.update([]int{id}, func(p packed) { p.set(id, state) })
}

// Cycle advances id to its next state and returns it.
func (s *Store) Cycle(id int) (State, error) {
	if err := checkID(id); err != nil {
		return None, err
	}
	var next State
	err := s.update([]int{id}, func(p packed) {
		next = p.get(id).Next()
		p.set(id, next)
	})
	return next, err
}

// SetRange stores state for every id in [start, end] with one write and
// one event.
func (s *Store) SetRange(start, end int, state State) error {
	if err := checkID(start); err != nil {
		return err
	}
	if err := checkID(end); err != nil {
		return err
	}
	if start > end {
		return fmt.Errorf("%w: start %d after end %d", ErrOutOfRange, start, end)
	}
	if err := checkState(state); err != nil {
		return err
	}
	ids := make([]int, 0, end-start+1)
	for id := start; id <= end; id++ {
		ids = append(ids, id)
	}
	return s.update(ids, func(p packed) {
		for _, id := range ids {
			p.set(id, state)
		}
	})
}

// Apply stores state for an arbitrary id set with one write and one event.
// Nothing is written if any id is out of range.
func (s *Store) Apply(ids []int, state State) error {
	if err := checkState(state); err != nil {
		return err
	}
	for _, id := range ids {
		if err := checkID(id); err != nil {
			return err
		}
	}
	if len(ids) == 0 {
		return nil
	}
	ids = append([]int(nil), ids...)
	return s.update(ids, func(p packed) {
		for _, id := range ids {
			p.set(id, state)
		}
	})
}

// CatchAll marks every id Caught, including shinies.
func (s *Store) CatchAll() error {
	return s.update(nil, func(p packed) { p.fill(Caught) })
}

// ReleaseAll removes the persisted state and the recency log.
func (s *Store) ReleaseAll() error {
	s.mu.Lock()
	if err := s.storage.Remove(StateKey); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("remove caught state: %w", err)
	}
	s.lastSeen, s.seenPresent = "", false
	if err := s.storage.Remove(RecentKey); err != nil {
		s.logger.Warn("failed to clear recent catches", "error", err)
	}
	s.mu.Unlock()

	s.bus.Publish(events.Event{Origin: events.Local})
	return nil
}

// AllStates returns every id whose state is not None.
func (s *Store) AllStates() map[int]State {
	p := s.snapshot()
	out := make(map[int]State)
	for id := 1; id <= MaxID; id++ {
		if st := p.get(id); st != None {
			out[id] = st
		}
	}
	return out
}

// Watch forwards changes written by other processes or handles to the bus
// as External events until stop is called. Echoes of this store's own
// writes are dropped.
func (s *Store) Watch() (stop func(), err error) {
	s.mu.Lock()
	value, ok, err := s.storage.Get(StateKey)
	if err == nil {
		s.lastSeen, s.seenPresent = value, ok
	}
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("read caught state: %w", err)
	}
	return s.storage.Watch(StateKey, s.onStorageChange)
}

func (s *Store) onStorageChange() {
	s.mu.Lock()
	value, ok, err := s.storage.Get(StateKey)
	if err != nil {
		s.mu.Unlock()
		s.logger.Warn("failed to read changed caught state", "error", err)
		return
	}
	if value == s.lastSeen && ok == s.seenPresent {
		s.mu.Unlock()
		return
	}
	s.lastSeen, s.seenPresent = value, ok
	s.mu.Unlock()

	s.logger.Debug("caught state changed externally")
	s.bus.Publish(events.Event{Origin: events.External})
}
