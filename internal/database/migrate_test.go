package database

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func TestLoadMigrations(t *testing.T) {
	t.Parallel()

	t.Run("orders embedded migrations by version", func(t *testing.T) {
		migrations, err := loadMigrations(migrationFS)
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(migrations), 2)
		require.Equal(t, 1, migrations[0].version)
		require.Equal(t, "initial", migrations[0].name)
		require.Contains(t, migrations[0].sql, "CREATE TABLE IF NOT EXISTS users")
		for i := 1; i < len(migrations); i++ {
			require.Less(t, migrations[i-1].version, migrations[i].version)
		}
	})

	t.Run("rejects duplicate versions", func(t *testing.T) {
		fsys := fstest.MapFS{
			"migrations/001_a.up.sql": {Data: []byte("SELECT 1")},
			"migrations/001_b.up.sql": {Data: []byte("SELECT 2")},
		}
		_, err := loadMigrations(fsys)
		require.Error(t, err)
	})

	t.Run("rejects malformed names", func(t *testing.T) {
		fsys := fstest.MapFS{
			"migrations/initial.up.sql": {Data: []byte("SELECT 1")},
		}
		_, err := loadMigrations(fsys)
		require.Error(t, err)
	})
}
