// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/edura/internal/platform/config"
)

/*
TestLoad_Defaults verifies the defaults when nothing is configured.
*/
func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("EDURA_ENV_FILE", filepath.Join(dir, "missing.env"))
	t.Setenv("EDURA_SESSION_DIR", dir)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.APIURL)
	assert.Equal(t, config.StoreFile, cfg.SessionStore)
	assert.Equal(t, dir, cfg.SessionDir)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "VND", cfg.Currency)
	assert.False(t, cfg.RetryAfterRefresh)
	assert.True(t, cfg.IsDevelopment())
}

/*
TestLoad_DotEnv verifies that a .env profile feeds the parser.
*/
func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "profile.env")
	content := "EDURA_API_URL=https://api.edura.dev\nEDURA_SESSION_STORE=memory\nEDURA_RETRY_AFTER_REFRESH=true\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	t.Setenv("EDURA_ENV_FILE", envFile)
	t.Setenv("EDURA_SESSION_DIR", dir)

	// Register cleanup for the variables godotenv is about to set.
	t.Setenv("EDURA_API_URL", "")
	t.Setenv("EDURA_SESSION_STORE", "")
	t.Setenv("EDURA_RETRY_AFTER_REFRESH", "")
	os.Unsetenv("EDURA_API_URL")
	os.Unsetenv("EDURA_SESSION_STORE")
	os.Unsetenv("EDURA_RETRY_AFTER_REFRESH")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.edura.dev", cfg.APIURL)
	assert.Equal(t, config.StoreMemory, cfg.SessionStore)
	assert.True(t, cfg.RetryAfterRefresh)
}

/*
TestLoad_RejectsUnknownStore verifies validation of the store backend.
*/
func TestLoad_RejectsUnknownStore(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("EDURA_ENV_FILE", filepath.Join(dir, "missing.env"))
	t.Setenv("EDURA_SESSION_DIR", dir)
	t.Setenv("EDURA_SESSION_STORE", "cookie")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cookie")
}

/*
TestLoadSandbox_Defaults verifies the sandbox defaults.
*/
func TestLoadSandbox_Defaults(t *testing.T) {
	t.Setenv("EDURA_ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))

	cfg, err := config.LoadSandbox()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.True(t, cfg.Seed)
}
