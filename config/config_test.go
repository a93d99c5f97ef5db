package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.yaml", "server:\n  port: 9090\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "session", cfg.Auth.CookieName)
	assert.True(t, cfg.Comment.AutoApprove)
	assert.Equal(t, 5000, cfg.Comment.MaxLength)
	assert.Equal(t, 30, cfg.Comment.RejectedRetentionDays)
}

func TestLoad_PrefersLocalConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.yaml", "auth:\n  jwt_secret: public\n")
	writeConfig(t, dir, "config.local.yaml", "auth:\n  jwt_secret: local-secret\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "local-secret", cfg.Auth.JWTSecret)
}

func TestLoad_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.yaml", "comment:\n  auto_approve: true\n")

	t.Setenv("COMMENT_AUTO_APPROVE", "false")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.Comment.AutoApprove)
}

func TestLoad_ListValues(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.yaml", `
comment:
  banned_words: ["spam", "casino"]
auth:
  admin_emails:
    - admin@example.com
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"spam", "casino"}, cfg.Comment.BannedWords)
	assert.Equal(t, []string{"admin@example.com"}, cfg.Auth.AdminEmails)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
