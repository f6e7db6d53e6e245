package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir changes into dir for the duration of the test. It stands in for
// testing.T.Chdir, which requires a newer Go toolchain.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Errorf("restore working directory: %v", err)
		}
	})
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "ev_stations.db", cfg.Store.DatabaseURL)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Zero(t, cfg.Server.RateLimitRPS)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, filepath.Join("data", "ev_stations.csv"), filepath.FromSlash(cfg.Seed.DatasetPath))
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost:5432/stations
server:
  port: 9090
  rate_limit_rps: 25
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost:5432/stations", cfg.Store.DatabaseURL)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 25.0, cfg.Server.RateLimitRPS)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Unset sections keep their defaults.
	assert.Equal(t, filepath.Join("data", "ev_stations.csv"), filepath.FromSlash(cfg.Seed.DatasetPath))
}

func TestLoad_DatabaseURLEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DATABASE_URL", "postgres://env-host:5432/stations")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://env-host:5432/stations", cfg.Store.DatabaseURL)
}

func TestLoad_PrefixedEnvWins(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DATABASE_URL", "postgres://plain:5432/stations")
	t.Setenv("EVSTATIONS_STORE_DATABASE_URL", "postgres://prefixed:5432/stations")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://prefixed:5432/stations", cfg.Store.DatabaseURL)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "json"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "console"}))

	err := InitLogger(LogConfig{Level: "nope", Format: "json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse log level")
}
