package testutil

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kasuganosora/sr5rules/cache"
	"github.com/kasuganosora/sr5rules/config"
	dbadapter "github.com/kasuganosora/sr5rules/db"
	"github.com/kasuganosora/sr5rules/model"
)

// SetupTestDB creates a private in-memory SQLite DB and runs AutoMigrate.
// Every call gets its own database, so parallel tests do not share rows.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := dbadapter.Open(config.DatabaseConfig{
		Mode:       dbadapter.ModeMemory,
		SQLitePath: "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	})
	require.NoError(t, err, "SetupTestDB: Open")
	require.NoError(t, model.AutoMigrate(db), "SetupTestDB: AutoMigrate")
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// SetupTestCache opens the in-process cache and pub/sub (no Redis required).
func SetupTestCache(t *testing.T) (cache.Cache, cache.PubSub) {
	t.Helper()
	c, ps, err := cache.Open(config.CacheConfig{})
	require.NoError(t, err, "SetupTestCache: Open")
	t.Cleanup(c.Close)
	return c, ps
}
