package catalog

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"queryquest/internal/db"
	"queryquest/internal/game"
)

func TestDefaultSeedIsValid(t *testing.T) {
	seeds, err := DefaultSeed()
	require.NoError(t, err)
	require.NotEmpty(t, seeds)
	for _, seed := range seeds {
		assert.NotEmpty(t, seed.Name)
		assert.NotEmpty(t, seed.Animals, "location %s", seed.Name)
	}
}

func TestLoadSeedFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	doc := "locations:\n  - name: Zion\n    biome: desert canyon\n    state: Utah\n    animals: [ringtail, desert tortoise]\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	seeds, err := LoadSeed(path)
	require.NoError(t, err)
	want := []db.LocationSeed{{Name: "Zion", Biome: "desert canyon", State: "Utah", Animals: []string{"ringtail", "desert tortoise"}}}
	if diff := cmp.Diff(want, seeds); diff != "" {
		t.Fatalf("seed mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadSeedRejectsIncompleteEntries(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`{"locations": []}`), 0o600))
	_, err := LoadSeed(empty)
	assert.ErrorIs(t, err, ErrEmptySeed)

	missing := filepath.Join(dir, "missing.json")
	require.NoError(t, os.WriteFile(missing, []byte(`{"locations": [{"name": "Zion", "state": "Utah"}]}`), 0o600))
	_, err = LoadSeed(missing)
	assert.Error(t, err)

	_, err = LoadSeed(filepath.Join(dir, "nope.json"))
	assert.Error(t, err)
}

func TestHintsOrder(t *testing.T) {
	got := Hints("swamp", "Georgia", []string{"heron"})
	want := []game.Hint{
		{Name: "biome", Value: "swamp"},
		{Name: "state name", Value: "Georgia"},
		{Name: "one animal's name", Value: "heron"},
	}
	assert.Equal(t, want, got)
}

func TestStaticProvider(t *testing.T) {
	seeds := []db.LocationSeed{
		{Name: "Acadia", Biome: "rocky coast", State: "Maine", Animals: []string{"moose"}},
		{Name: "Denali", Biome: "tundra", State: "Alaska", Animals: []string{"caribou", "moose"}},
	}
	provider := NewStatic(seeds)
	provider.pick = func(int) int { return 1 }

	answer, hints, err := provider.NextAnswerAndHints(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Denali", answer)
	assert.Len(t, hints, 4)

	_, _, err = NewStatic(nil).NextAnswerAndHints(context.Background())
	assert.ErrorIs(t, err, ErrEmptySeed)
}

func TestBuildSQLite(t *testing.T) {
	seeds, err := DefaultSeed()
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "catalog.db")
	ctx := context.Background()

	require.NoError(t, BuildSQLite(ctx, path, seeds))
	// rebuilding replaces the previous contents
	require.NoError(t, BuildSQLite(ctx, path, seeds))

	conn, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer conn.Close()

	var locations int
	require.NoError(t, conn.QueryRowContext(ctx, `SELECT count(*) FROM location`).Scan(&locations))
	assert.Equal(t, len(seeds), locations)

	var state string
	err = conn.QueryRowContext(ctx, `
		SELECT s.state_name FROM location l
		JOIN state s ON s.state_id = l.state_id
		WHERE l.location_name = 'Everglades'`).Scan(&state)
	require.NoError(t, err)
	assert.Equal(t, "Florida", state)

	var bears int
	err = conn.QueryRowContext(ctx, `
		SELECT count(*) FROM location_animals la
		JOIN animal a ON a.animal_id = la.animal_id
		WHERE a.animal_name = 'black bear'`).Scan(&bears)
	require.NoError(t, err)
	assert.Equal(t, 5, bears)
}
