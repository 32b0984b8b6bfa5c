package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pragma(t *testing.T, path string, memory bool, name string) string {
	t.Helper()
	db, err := Open(path, memory)
	require.NoError(t, err)
	sqlDB, _ := db.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })

	var v string
	require.NoError(t, db.Raw("PRAGMA "+name).Scan(&v).Error)
	return v
}

func TestOpenMemoryEnablesForeignKeys(t *testing.T) {
	assert.Equal(t, "1", pragma(t, "file::memory:", true, "foreign_keys"))
}

func TestOpenFileUsesWAL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sr5rules.db")
	assert.Equal(t, "wal", pragma(t, path, false, "journal_mode"))
}
