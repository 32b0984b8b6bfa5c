package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server:\n  port: 9000\n"))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Mode)
	assert.Equal(t, time.Hour, cfg.Database.MaxLife)
	assert.Equal(t, 30*time.Minute, cfg.Rules.PendingTTL)
	assert.Equal(t, int64(0), cfg.Rules.DiceSeed)
	assert.True(t, cfg.Audit.Enabled)
	assert.Equal(t, 100, cfg.Audit.BatchSize)
	assert.Equal(t, "sr5rules:", cfg.Cache.KeyPrefix)
	assert.Equal(t, 30*time.Second, cfg.Cache.LocalGCInterval)
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
database:
  mode: postgres
  dsn: "host=localhost user=sr5"
rules:
  dice_seed: 42
  pending_ttl: 5m
  show_dialog: true
`))
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Database.Mode)
	assert.Equal(t, "host=localhost user=sr5", cfg.Database.DSN)
	assert.Equal(t, int64(42), cfg.Rules.DiceSeed)
	assert.Equal(t, 5*time.Minute, cfg.Rules.PendingTTL)
	assert.True(t, cfg.Rules.ShowDialog)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestWatch_ReloadsRules(t *testing.T) {
	path := writeConfig(t, "rules:\n  pending_ttl: 1m\n")
	changed := make(chan RulesConfig, 16)
	cfg, err := Watch(path, func(r RulesConfig) {
		select {
		case changed <- r:
		default:
		}
	})
	require.NoError(t, err)
	assert.Equal(t, time.Minute, cfg.Rules.PendingTTL)

	require.NoError(t, os.WriteFile(path, []byte("rules:\n  pending_ttl: 2m\n"), 0o644))
	deadline := time.After(5 * time.Second)
	for {
		select {
		case r := <-changed:
			// a truncating write may be observed before the new content
			if r.PendingTTL == 2*time.Minute {
				return
			}
		case <-deadline:
			t.Fatal("config change not observed")
		}
	}
}
