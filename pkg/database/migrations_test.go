package database

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func openMemory(t *testing.T) *DB {
	t.Helper()
	db, err := New(Config{Path: MemoryPath}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestLoadMigrations_OrdersByVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"002_add_index.sql": {Data: []byte("CREATE INDEX i ON t(a);")},
		"001_create.sql":    {Data: []byte("CREATE TABLE t (a INTEGER);")},
		"README.md":         {Data: []byte("ignored")},
		"nested/003_x.sql":  {Data: []byte("ignored")},
	}

	migrations, err := LoadMigrations(fsys)
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, 1, migrations[0].Version)
	assert.Equal(t, "create", migrations[0].Name)
	assert.Equal(t, "add_index", migrations[1].Name)
}

func TestLoadMigrations_RejectsBadNames(t *testing.T) {
	_, err := LoadMigrations(fstest.MapFS{"initial.sql": {Data: []byte("SELECT 1;")}})
	assert.Error(t, err)

	_, err = LoadMigrations(fstest.MapFS{
		"001_a.sql": {Data: []byte("SELECT 1;")},
		"001_b.sql": {Data: []byte("SELECT 1;")},
	})
	assert.Error(t, err)
}

func TestMigrator_RunIsIdempotent(t *testing.T) {
	db := openMemory(t)
	migrator := NewMigrator(db, zap.NewNop())

	applied, err := migrator.Run(Migrations())
	require.NoError(t, err)
	assert.Positive(t, applied)

	again, err := migrator.Run(Migrations())
	require.NoError(t, err)
	assert.Zero(t, again)

	versions, err := migrator.AppliedVersions()
	require.NoError(t, err)
	assert.True(t, versions[1])

	for _, table := range []string{"users", "stages", "tasks", "activity_logs", "notifications"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		require.NoError(t, err, table)
	}
}

func TestMigrator_FailedMigrationIsNotRecorded(t *testing.T) {
	db := openMemory(t)
	migrator := NewMigrator(db, zap.NewNop())

	_, err := migrator.Run(fstest.MapFS{"001_broken.sql": {Data: []byte("CREATE TABLE (")}})
	require.Error(t, err)

	versions, err := migrator.AppliedVersions()
	require.NoError(t, err)
	assert.False(t, versions[1])
}
