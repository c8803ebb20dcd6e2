package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iotaledger/inx-chronicle-sub002/pkg/gapfiller"
)

func TestLoadDefaultsWithNoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "chronicle", cfg.MongoDB.DatabaseName)
	require.True(t, cfg.API.Enabled)
	require.Equal(t, 8080, cfg.API.Port)
}

func TestLoadParsesYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chronicle.yaml")
	content := `
mongodb:
  conn_str: mongodb://localhost:27017
  database_name: chronicle_test
inx:
  connect_url: http://localhost:9029
  sync_kind: "from(100)"
  max_parallel_requests: 25
api:
  port: 9090
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "mongodb://localhost:27017", cfg.MongoDB.ConnStr)
	require.Equal(t, "chronicle_test", cfg.MongoDB.DatabaseName)
	require.Equal(t, "http://localhost:9029", cfg.INX.ConnectURL)
	require.Equal(t, 25, cfg.INX.MaxParallelRequests)
	require.Equal(t, 9090, cfg.API.Port)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chronicle.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  port: 9090\n"), 0o600))

	t.Setenv("CHRONICLE_API_PORT", "7070")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 7070, cfg.API.Port)
}

func TestGapFillerConfigFromIndex(t *testing.T) {
	cfg := Default()
	cfg.INX.SyncKind = "from(42)"
	gfc, err := cfg.GapFillerConfig()
	require.NoError(t, err)
	require.Equal(t, gapfiller.ModeFromIndex, gfc.Mode)
	require.EqualValues(t, 42, gfc.FromIndex)
}

func TestGapFillerConfigMaxBehind(t *testing.T) {
	cfg := Default()
	cfg.INX.SyncKind = "max(1000)"
	gfc, err := cfg.GapFillerConfig()
	require.NoError(t, err)
	require.Equal(t, gapfiller.ModeMaxBehind, gfc.Mode)
	require.EqualValues(t, 1000, gfc.MaxBehind)
}

func TestGapFillerConfigRejectsInvalidSyntax(t *testing.T) {
	cfg := Default()
	cfg.INX.SyncKind = "bogus"
	_, err := cfg.GapFillerConfig()
	require.Error(t, err)
}

func TestDefaultRetryDelay(t *testing.T) {
	require.Equal(t, 5*time.Second, Default().INX.RetryDelay)
}
