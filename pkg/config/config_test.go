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

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 0.1, cfg.Discovery.RadiusMiles)
	assert.Equal(t, 3, cfg.Discovery.MaxResults)
	assert.Equal(t, "https://nominatim.openstreetmap.org", cfg.Geo.BaseURL)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: 9090
discovery:
  radius_miles: 0.25
  max_results: 5
database:
  name: directory_test
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 0.25, cfg.Discovery.RadiusMiles)
	assert.Equal(t, 5, cfg.Discovery.MaxResults)
	assert.Equal(t, "directory_test", cfg.Database.Name)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("DISCOVERY_RADIUS_MILES", "0.5")
	t.Setenv("PGDATABASE", "from_env")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 0.5, cfg.Discovery.RadiusMiles)
	assert.Equal(t, "from_env", cfg.Database.Name)
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Setenv("DISCOVERY_RADIUS_MILES", "-1")

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
