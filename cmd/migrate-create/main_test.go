package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMigrationWritesPair(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "migrations")
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

	up, down, err := createMigration(dir, "add_hints", now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "20261019090000_add_hints.up.sql"), up)
	assert.Equal(t, filepath.Join(dir, "20261019090000_add_hints.down.sql"), down)

	data, err := os.ReadFile(up)
	require.NoError(t, err)
	assert.Equal(t, "-- up migration\n", string(data))

	_, _, err = createMigration(dir, "add_hints", now)
	assert.ErrorContains(t, err, "already exists")
}

func TestCreateMigrationRejectsBadNames(t *testing.T) {
	for _, name := range []string{"", "two words", "a/b"} {
		_, _, err := createMigration(t.TempDir(), name, time.Now())
		assert.Error(t, err, "%q", name)
	}
}
