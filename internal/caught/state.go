package caught

import (
	"fmt"
	"strings"
)

// State is the catch status of one Pokémon.
type State uint8

const (
	None State = iota
	Caught
	Shiny
)

// reserved is the unused 2-bit pattern. It decodes as None and is never
// written.
const reserved State = 3

// Valid reports whether s is one of None, Caught or Shiny.
func (s State) Valid() bool {
	return s <= Shiny
}

func (s State) String() string {
	switch s {
	case None:
		return "none"
	case Caught:
		return "caught"
	case Shiny:
		return "shiny"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Next returns the state a checkbox click moves to: none, caught, shiny,
// then back to none.
func (s State) Next() State {
	switch s {
	case None:
		return Caught
	case Caught:
		return Shiny
	default:
		return None
	}
}

// ParseState accepts the names produced by String, case-insensitively.
func ParseState(value string) (State, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "none", "":
		return None, nil
	case "caught":
		return Caught, nil
	case "shiny":
		return Shiny, nil
	default:
		return None, fmt.Errorf("%w: %q", ErrInvalidState, value)
	}
}

func (s State) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidState, uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	parsed, err := ParseState(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
