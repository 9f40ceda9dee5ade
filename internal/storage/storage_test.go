package storage

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// backendContract runs the behaviour every backend shares.
func backendContract(t *testing.T, s Storage) {
	t.Helper()

	_, ok, err := s.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set("pokemon-caught-state", "AAAA"))
	v, ok, err := s.Get("pokemon-caught-state")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "AAAA", v)

	require.NoError(t, s.Set("pokemon-caught-state", "BBBB"))
	v, _, err = s.Get("pokemon-caught-state")
	require.NoError(t, err)
	assert.Equal(t, "BBBB", v)

	require.NoError(t, s.Set("pokemon-caught-001", "caught"))
	require.NoError(t, s.Set("pokemon-caught-025", "shiny"))
	keys, err := s.Keys("pokemon-caught-0")
	require.NoError(t, err)
	assert.Equal(t, []string{"pokemon-caught-001", "pokemon-caught-025"}, keys)

	require.NoError(t, s.Remove("pokemon-caught-001"))
	require.NoError(t, s.Remove("pokemon-caught-001"))
	_, ok, err = s.Get("pokemon-caught-001")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = s.Get("  ")
	assert.ErrorIs(t, err, ErrInvalidKey)
	assert.ErrorIs(t, s.Set("", "x"), ErrInvalidKey)
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"", KindFile, false},
		{"file", KindFile, false},
		{" Badger ", KindBadger, false},
		{"memory", KindMemory, false},
		{"redis", "", true},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestOpen_SelectsBackend(t *testing.T) {
	s, err := Open(KindMemory, "", nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStorage{}, s)
	require.NoError(t, s.Close())

	s, err = Open(KindFile, t.TempDir(), nil)
	require.NoError(t, err)
	assert.IsType(t, &FileStorage{}, s)
	require.NoError(t, s.Close())

	_, err = Open(Kind("nope"), "", nil)
	assert.Error(t, err)
}

func TestMemoryStorage_Contract(t *testing.T) {
	backendContract(t, NewMemoryStorage())
}

func TestMemoryStorage_WatchFiresForKeyOnly(t *testing.T) {
	s := NewMemoryStorage()
	var hits atomic.Int32
	stop, err := s.Watch("a", func() { hits.Add(1) })
	require.NoError(t, err)

	require.NoError(t, s.Set("b", "1"))
	require.NoError(t, s.Set("a", "1"))
	require.Eventually(t, func() bool { return hits.Load() >= 1 }, time.Second, 5*time.Millisecond)

	stop()
	stop()
	before := hits.Load()
	require.NoError(t, s.Set("a", "2"))
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, before, hits.Load())
}

func TestMemoryStorage_CloseStopsWatchers(t *testing.T) {
	s := NewMemoryStorage()
	stop, err := s.Watch("a", func() {})
	require.NoError(t, err)
	require.NoError(t, s.Close())
	// stop after Close must not panic on a closed channel.
	stop()
}
