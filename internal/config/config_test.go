package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
telegram:
  bot_token: "${DARBOT_TEST_TOKEN}"
  send_rate: 20
database:
  path: "%s"
backup:
  enabled: true
  interval_hours: 12
  path: "data/backups"
  retention_days: 7
redis:
  enabled: true
  address: "localhost:6379"
booking:
  session_timeout_minutes: 45
admins:
  - 111
  - 222
admin_password: "secret"
`

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("DARBOT_TEST_TOKEN", "123:abc")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	dbPath := filepath.Join(dir, "db", "darbot.db")
	content := []byte(fmt.Sprintf(sampleConfig, dbPath))
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.Telegram.BotToken)
	assert.Equal(t, dbPath, cfg.Database.Path)
	assert.True(t, cfg.Backup.Enabled)
	assert.Equal(t, 12, cfg.Backup.IntervalHours)
	assert.Equal(t, 45*time.Minute, cfg.SessionTimeout())
	assert.Equal(t, float64(20), cfg.SendRate())
	assert.True(t, cfg.IsAdmin(111))
	assert.False(t, cfg.IsAdmin(333))

	// Database directory is created by Load.
	_, err = os.Stat(filepath.Dir(dbPath))
	assert.NoError(t, err)
}

func TestLoadRequiresToken(t *testing.T) {
	t.Setenv("DARBOT_TEST_TOKEN", "")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf(sampleConfig, filepath.Join(dir, "d.db"))), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestDefaults(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, 30*time.Minute, cfg.SessionTimeout())
	assert.Equal(t, float64(25), cfg.SendRate())
	assert.Equal(t, 365*24*time.Hour, cfg.MaxAdvance())
}
