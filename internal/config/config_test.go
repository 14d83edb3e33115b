package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestParseDefaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", testSecret)
	t.Setenv("DB_TYPE", "sqlite")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "mainnet", cfg.BitcoinNetwork)
	assert.Equal(t, "local", cfg.StorageType)
	assert.Equal(t, int64(10), cfg.MaxUploadMB)
	assert.False(t, cfg.IsDevelopment())
}

func TestParseRequiresSessionSecret(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("DB_TYPE", "sqlite")

	_, err := Parse()
	assert.ErrorContains(t, err, "SESSION_SECRET")
}

func TestParseRejectsShortSessionSecret(t *testing.T) {
	t.Setenv("SESSION_SECRET", "short")
	t.Setenv("DB_TYPE", "sqlite")

	_, err := Parse()
	assert.ErrorContains(t, err, "at least 32 bytes")
}

func TestParsePostgresNeedsDSN(t *testing.T) {
	t.Setenv("SESSION_SECRET", testSecret)
	t.Setenv("DB_TYPE", "postgres")
	t.Setenv("DB_DSN", "")

	_, err := Parse()
	assert.ErrorContains(t, err, "DB_DSN")
}

func TestParseUnknownDBType(t *testing.T) {
	t.Setenv("SESSION_SECRET", testSecret)
	t.Setenv("DB_TYPE", "oracle")

	_, err := Parse()
	assert.ErrorContains(t, err, "unsupported DB_TYPE")
}

func TestLoadForCLISkipsSessionSecret(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("DB_TYPE", "sqlite")

	cfg, err := LoadForCLI()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DBType)
}
