package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fellrank-data/race.report/internal/db"
)

func dbRunner(name string, club *string) db.Runner {
	return db.Runner{Name: name, Club: club}
}

func TestRegistryGetOrCreate(t *testing.T) {
	store := newFakeStore()
	reg := NewRegistry(store)

	club := "Carnethy"
	id1, err := reg.GetOrCreate("Alice Smith", &club, 2023)
	require.NoError(t, err)
	id2, err := reg.GetOrCreate("  Alice Smith  ", &club, 2024)
	require.NoError(t, err)
	assert.Equal(t, id1, id2, "whitespace should not split an identity")

	unattached, err := reg.GetOrCreate("Alice Smith", nil, 2024)
	require.NoError(t, err)
	assert.NotEqual(t, id1, unattached, "unattached is a distinct identity")
}

func TestRegistryRecordAppearance(t *testing.T) {
	store := newFakeStore()
	reg := NewRegistry(store)

	id, err := reg.GetOrCreate("Bob", nil, 2024)
	require.NoError(t, err)
	require.NoError(t, reg.RecordAppearance(id))
	require.NoError(t, reg.RecordAppearance(id))

	rows, err := reg.FindExact("Bob")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].Appearances)
}

func TestRegistryFindSimilar(t *testing.T) {
	store := newFakeStore()
	reg := NewRegistry(store)

	for _, name := range []string{"Alice Smith", "Alice Smyth", "Bob Jones"} {
		_, err := reg.GetOrCreate(name, nil, 2024)
		require.NoError(t, err)
	}

	matches, err := reg.FindSimilar("Alice Smith")
	require.NoError(t, err)

	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m.Name
	}
	assert.Contains(t, names, "Alice Smith")
	assert.Contains(t, names, "Alice Smyth")
	assert.NotContains(t, names, "Bob Jones")
	assert.Equal(t, "Alice Smith", names[0], "exact match ranks first")
}

func TestRegistryFindSimilarSubstring(t *testing.T) {
	store := newFakeStore()
	reg := NewRegistry(store)

	_, err := reg.GetOrCreate("Alice Smith", nil, 2024)
	require.NoError(t, err)

	matches, err := reg.FindSimilar("Smith")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Alice Smith", matches[0].Name)
}

func TestKeyForRunner(t *testing.T) {
	club := "Carnethy"
	attached := KeyForRunner(dbRunner("Alice", &club))
	assert.True(t, attached.Attached)
	assert.Equal(t, "Carnethy", attached.Club)

	loner := KeyForRunner(dbRunner("Alice", nil))
	assert.False(t, loner.Attached)
	assert.NotEqual(t, attached, loner)
}
