package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadLayersFileThenEnv(t *testing.T) {
	path := writeFile(t, "config.yaml", `
db_path: /tmp/from-file.db
env: production
openfoodfacts:
  base_url: http://off.local
search:
  cap: 5
  debounce: 450ms
server:
  allowed_origins: ["http://localhost:5173"]
`)
	t.Setenv(EnvAddr, "0.0.0.0:9000")
	t.Setenv(EnvDB, "")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/from-file.db", cfg.DBPath)
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "http://off.local", cfg.OpenFoodFacts.BaseURL)
	assert.Equal(t, 5, cfg.Search.Cap)
	assert.Equal(t, 450*time.Millisecond, cfg.Search.Debounce)
	assert.Equal(t, DefaultRemoteTimeout, cfg.Search.RemoteTimeout)
	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Addr)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Server.AllowedOrigins)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "config.yaml", "db_path: /tmp/from-file.db\nuser: sam\n")
	t.Setenv(EnvDB, "/tmp/from-env.db")
	t.Setenv(EnvUser, "alex")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/from-env.db", cfg.DBPath)
	assert.Equal(t, "alex", cfg.User)
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", "search: [unclosed\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadDotEnvDoesNotOverrideProcessEnv(t *testing.T) {
	const key = "MACROLOG_TEST_DOTENV_VALUE"
	t.Cleanup(func() { os.Unsetenv(key) })

	path := writeFile(t, ".env", key+"=from-dotenv\n")
	require.NoError(t, loadDotEnv(path))
	assert.Equal(t, "from-dotenv", os.Getenv(key))

	t.Setenv(key, "from-process")
	require.NoError(t, loadDotEnv(path))
	assert.Equal(t, "from-process", os.Getenv(key))
}

func TestLoadDotEnvMissingIsFine(t *testing.T) {
	require.NoError(t, loadDotEnv(filepath.Join(t.TempDir(), ".env")))
}
