package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "reach.db", cfg.Database.Path)
	assert.Equal(t, "playbooks", cfg.Playbooks.Dir)
	assert.Equal(t, "connection_note", cfg.Outreach.DefaultKind)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 30000, cfg.Personalize.TimeoutMs)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reach.yaml")
	body := `
database:
  path: /var/lib/reach/reach.db
personalize:
  endpoint: http://localhost:8090/draft
  model: draft-large
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/reach/reach.db", cfg.Database.Path)
	assert.Equal(t, "http://localhost:8090/draft", cfg.Personalize.Endpoint)
	assert.Equal(t, "draft-large", cfg.Personalize.Model)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Untouched sections keep defaults.
	assert.Equal(t, "playbooks", cfg.Playbooks.Dir)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("REACH_DB_PATH", "/tmp/override.db")
	t.Setenv("REACH_LOG_LEVEL", "warn")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "/tmp/override.db", cfg.Database.Path)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadRejectsBadLevel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reach.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: loud\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level")
}

func TestLoadRejectsBadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reach.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\n  - not valid"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}
