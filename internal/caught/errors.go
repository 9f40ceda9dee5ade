package caught

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfRange reports an id outside 1..MaxID.
	ErrOutOfRange = errors.New("caught: id out of range")
	// ErrInvalidState reports a State that may not be stored.
	ErrInvalidState = errors.New("caught: invalid state")
	// ErrInvalidSnapshot reports an import document that was rejected.
	ErrInvalidSnapshot = errors.New("caught: invalid snapshot")
)

// RangeError carries the offending id. It matches ErrOutOfRange.
type RangeError struct {
	ID int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("caught: id %d outside 1..%d", e.ID, MaxID)
}

func (e *RangeError) Is(target error) bool {
	return target == ErrOutOfRange
}

func checkID(id int) error {
	if id < 1 || id > MaxID {
		return &RangeError{ID: id}
	}
	return nil
}

func checkState(s State) error {
	if !s.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidState, uint8(s))
	}
	return nil
}
