package caught

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/five82/shinyhunt/internal/bitcodec"
	"github.com/five82/shinyhunt/internal/events"
)

// TimestampLayout matches JavaScript's Date.toISOString.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Snapshot is the portable export document.
type Snapshot struct {
	Timestamp string `json:"timestamp" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Data      string `json:"data" validate:"required,base64"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Export captures the current persisted state.
func (s *Store) Export() Snapshot {
	p := s.snapshot()
	return Snapshot{
		Timestamp: s.now().UTC().Format(TimestampLayout),
		Data:      bitcodec.Encode(p),
	}
}

func (s *Store) ExportJSON() ([]byte, error) {
	data, err := json.MarshalIndent(s.Export(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// Import replaces the persisted state with snap. Nothing is merged. A
// rejected snapshot leaves the store untouched and returns an error
// matching ErrInvalidSnapshot.
func (s *Store) Import(snap Snapshot) error {
	if err := validate.Struct(snap); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	words, err := bitcodec.DecodeStrict(snap.Data, WordCount)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	p := packed(words)
	for id := 1; id <= MaxID; id++ {
		if p.raw(id) == reserved {
			return fmt.Errorf("%w: reserved state for id %d", ErrInvalidSnapshot, id)
		}
	}
	p.clearPadding()
	encoded := bitcodec.Encode(p)

	s.mu.Lock()
	if err := s.storage.Set(StateKey, encoded); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("write caught state: %w", err)
	}
	s.lastSeen, s.seenPresent = encoded, true
	s.mu.Unlock()

	s.bus.Publish(events.Event{Origin: events.Local})
	return nil
}

// ImportJSON parses a snapshot document and imports it.
func (s *Store) ImportJSON(data []byte) error {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	return s.Import(snap)
}
