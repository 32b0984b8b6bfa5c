package db

import (
	"fmt"

	"github.com/kasuganosora/sr5rules/config"
	dbmysql "github.com/kasuganosora/sr5rules/db/mysql"
	dbpostgres "github.com/kasuganosora/sr5rules/db/postgres"
	dbsqlite "github.com/kasuganosora/sr5rules/db/sqlite"
	"gorm.io/gorm"
)

const (
	ModeMemory   = "memory"
	ModeSQLite   = "sqlite"
	ModeMySQL    = "mysql"
	ModePostgres = "postgres"
)

// Open returns a *gorm.DB for the configured database mode. In memory mode
// SQLitePath may name a distinct in-memory database.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	switch cfg.Mode {
	case ModeMemory:
		dsn := cfg.SQLitePath
		if dsn == "" {
			dsn = "file::memory:?cache=shared"
		}
		return dbsqlite.Open(dsn, true)
	case ModeSQLite:
		return dbsqlite.Open(cfg.SQLitePath, false)
	case ModeMySQL:
		return dbmysql.Open(cfg.DSN, cfg.MaxOpen, cfg.MaxIdle, cfg.MaxLife)
	case ModePostgres:
		return dbpostgres.Open(cfg.DSN, cfg.MaxOpen, cfg.MaxIdle, cfg.MaxLife)
	default:
		return nil, fmt.Errorf("db: unknown mode %q", cfg.Mode)
	}
}
