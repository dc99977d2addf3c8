package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	orig := os.Args
	os.Args = append([]string{"testbin"}, args...)
	t.Cleanup(func() { os.Args = orig })
}

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "sqlite3", cfg.DatabaseDriver)
	assert.Equal(t, 5*time.Second, cfg.MinSubmitInterval)
	assert.Empty(t, cfg.ArchiveDir)
}

func TestLoadConfig_FlagsOverrideDefaults(t *testing.T) {
	withArgs(t, "-a", ":9999", "-r", "pgx", "-i", "10")

	cfg := LoadConfig()

	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, "pgx", cfg.DatabaseDriver)
	assert.Equal(t, 10*time.Second, cfg.MinSubmitInterval)
	// untouched field keeps its default
	assert.Equal(t, "secretKey", cfg.SecretKey)
}

func TestLoadConfig_JsonOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.json")
	payload := map[string]any{
		"addr":                ":7070",
		"database_driver":     "mysql",
		"database_dsn":        "user:pass@tcp(127.0.0.1:3306)/formdesk?parseTime=true",
		"min_submit_interval": "8s",
	}
	b, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))

	withArgs(t, "-c", path)

	cfg := LoadConfig()

	assert.Equal(t, ":7070", cfg.Addr)
	assert.Equal(t, "mysql", cfg.DatabaseDriver)
	assert.Equal(t, 8*time.Second, cfg.MinSubmitInterval)
}

func TestLoadConfig_FlagsBeatJson(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"addr": ":7070"}`), 0o600))

	withArgs(t, "-c", path, "-a", ":6060")

	cfg := LoadConfig()
	assert.Equal(t, ":6060", cfg.Addr)
}
