// Package storage provides the synchronous key/value primitive that holds
// persisted caught state on the local machine.
//
// # Backends
//
//   - FileStorage: one file per key in a directory. Writes are atomic
//     (temp file + rename). Changes made by other processes are observed
//     with fsnotify. This is the default.
//   - BadgerStorage: an embedded BadgerDB, persistent or in memory. Changes
//     are observed through badger's key subscription, so every handle on the
//     same *badger.DB sees every write.
//   - MemoryStorage: a map for tests and ephemeral sessions.
//
// # Change Signal
//
// Watch registers a callback fired after the watched key is written or
// removed. Callbacks run on a goroutine owned by the backend, never on the
// writer's goroutine, and bursts may be coalesced. Backends may also signal
// the writer's own handle; consumers compare values when echoes matter.
package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Storage is a string key/value store with a change signal.
type Storage interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(key string) (value string, ok bool, err error)
	// Set stores value under key.
	Set(key, value string) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(key string) error
	// Keys lists keys with the given prefix in ascending order.
	Keys(prefix string) ([]string, error)
	// Watch calls fn after key changes until stop is called.
	Watch(key string, fn func()) (stop func(), err error)
	// Close releases resources held by the backend.
	Close() error
}

// Kind names a storage backend in configuration.
type Kind string

const (
	KindFile   Kind = "file"
	KindBadger Kind = "badger"
	KindMemory Kind = "memory"
)

// ErrInvalidKey reports a key that cannot be stored.
var ErrInvalidKey = errors.New("storage: invalid key")

// ParseKind normalizes a configured backend name. Empty selects KindFile.
func ParseKind(value string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(value))) {
	case "", KindFile:
		return KindFile, nil
	case KindBadger:
		return KindBadger, nil
	case KindMemory:
		return KindMemory, nil
	default:
		return "", fmt.Errorf("unknown storage backend %q", value)
	}
}

// Open creates the backend of the given kind rooted at path.
func Open(kind Kind, path string, logger *slog.Logger) (Storage, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	switch kind {
	case KindFile, "":
		return NewFileStorage(path, logger)
	case KindBadger:
		cfg := DefaultBadgerConfig()
		cfg.Path = path
		cfg.Logger = logger
		return OpenBadger(cfg)
	case KindMemory:
		return NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", kind)
	}
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidKey)
	}
	return nil
}
