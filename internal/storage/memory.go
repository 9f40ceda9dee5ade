package storage

import (
	"sort"
	"strings"
	"sync"
)

// MemoryStorage keeps values in a map. Safe for concurrent use.
type MemoryStorage struct {
	mu       sync.Mutex
	data     map[string]string
	watchers map[uint64]*memoryWatch
	nextID   uint64
}

type memoryWatch struct {
	key    string
	signal chan struct{}
	done   chan struct{}
}

// NewMemoryStorage returns an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		data:     make(map[string]string),
		watchers: make(map[uint64]*memoryWatch),
	}
}

func (m *MemoryStorage) Get(key string) (string, bool, error) {
	if err := validateKey(key); err != nil {
		return "", false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryStorage) Set(key, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	m.mu.Lock()
	m.data[key] = value
	m.notifyLocked(key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStorage) Remove(key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	m.mu.Lock()
	if _, ok := m.data[key]; ok {
		delete(m.data, key)
		m.notifyLocked(key)
	}
	m.mu.Unlock()
	return nil
}

func (m *MemoryStorage) Keys(prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *MemoryStorage) Watch(key string, fn func()) (func(), error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	w := &memoryWatch{
		key:    key,
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	m.mu.Lock()
	m.nextID++
	id := m.nextID
	m.watchers[id] = w
	m.mu.Unlock()

	go func() {
		for {
			select {
			case <-w.signal:
				fn()
			case <-w.done:
				return
			}
		}
	}()

	return func() {
		m.mu.Lock()
		_, ok := m.watchers[id]
		delete(m.watchers, id)
		m.mu.Unlock()
		if ok {
			close(w.done)
		}
	}, nil
}

// notifyLocked wakes watchers of key without blocking; a pending signal
// absorbs later ones.
func (m *MemoryStorage) notifyLocked(key string) {
	for _, w := range m.watchers {
		if w.key != key {
			continue
		}
		select {
		case w.signal <- struct{}{}:
		default:
		}
	}
}

func (m *MemoryStorage) Close() error {
	m.mu.Lock()
	watchers := m.watchers
	m.watchers = make(map[uint64]*memoryWatch)
	m.mu.Unlock()
	for _, w := range watchers {
		close(w.done)
	}
	return nil
}
