package caught

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// paldeaEntries maps a few Paldea entry numbers to national ids.
func paldeaEntries(entry int) (int, bool) {
	id, ok := map[int]int{1: 906, 4: 909, 25: 921, 30: 1025, 31: 4}[entry]
	return id, ok
}

func TestMigrateLegacy(t *testing.T) {
	s, st := newTestStore(t)
	require.NoError(t, s.SetState(909, Shiny))
	require.NoError(t, st.Set("pokemon-caught-001", "caught"))
	require.NoError(t, st.Set("pokemon-caught-025", "shiny"))
	require.NoError(t, st.Set("pokemon-caught-004", "caught"))
	require.NoError(t, st.Set("pokemon-caught-030", "caught"))
	require.NoError(t, st.Set("pokemon-caught-031", "sparkly"))
	require.NoError(t, st.Set("pokemon-caught-399", "caught"))
	n := countEvents(s)

	applied, err := s.MigrateLegacy(paldeaEntries)
	require.NoError(t, err)
	assert.Equal(t, 3, applied)
	assert.Equal(t, map[int]State{906: Caught, 909: Shiny, 921: Shiny, MaxID: Caught}, s.AllStates())
	assert.Equal(t, int32(1), n.Load())

	has, err := s.HasLegacy()
	require.NoError(t, err)
	assert.False(t, has)
}

func TestMigrateLegacyNothingToDo(t *testing.T) {
	s, _ := newTestStore(t)
	n := countEvents(s)
	has, err := s.HasLegacy()
	require.NoError(t, err)
	assert.False(t, has)

	applied, err := s.MigrateLegacy(paldeaEntries)
	require.NoError(t, err)
	assert.Zero(t, applied)
	assert.Zero(t, n.Load())
}

func TestHasLegacyIgnoresPackedKeys(t *testing.T) {
	s, st := newTestStore(t)
	require.NoError(t, s.SetState(1, Caught))
	has, err := s.HasLegacy()
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, st.Set("pokemon-caught-007", "caught"))
	has, err = s.HasLegacy()
	require.NoError(t, err)
	assert.True(t, has)
}

func TestMigrateLegacyRequiresResolver(t *testing.T) {
	s, st := newTestStore(t)
	require.NoError(t, st.Set("pokemon-caught-001", "caught"))
	_, err := s.MigrateLegacy(nil)
	require.Error(t, err)

	_, ok, err := st.Get("pokemon-caught-001")
	require.NoError(t, err)
	assert.True(t, ok, "legacy key kept")
}
