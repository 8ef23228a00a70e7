package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg := Load(filepath.Join(t.TempDir(), "does-not-exist.yml"))
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 3, cfg.RetryCount)
	assert.Equal(t, 1, cfg.UploadConnections)
	assert.Equal(t, 1, cfg.DownloadConnections)
}

func TestWriteThenLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yml")
	want := Config{
		KeyID:               "key1",
		ApplicationKey:      "secret1",
		APIBase:             "https://api.example.com",
		LogLevel:            "debug",
		RetryCount:          5,
		UploadConnections:   4,
		DownloadConnections: 2,
		UploadCutoffSize:    1 << 20,
		UploadPartSize:      1 << 18,
		DownloadCutoffSize:  1 << 20,
		DownloadPartSize:    1 << 18,
	}

	require.NoError(t, want.Write(path))

	got := Load(path)
	assert.Equal(t, want, *got)
}

func TestLoadMergesPartialFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	partial := Config{KeyID: "key1", ApplicationKey: "secret1"}
	require.NoError(t, partial.Write(path))

	got := Load(path)
	assert.Equal(t, "key1", got.KeyID)
	assert.Equal(t, "info", got.LogLevel, "zero-value fields should be filled from defaults")
	assert.Equal(t, 3, got.RetryCount)
}

func TestLoadRejectsInvalidLogLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	bad := Config{LogLevel: "verbose", RetryCount: 2, UploadConnections: 1, DownloadConnections: 1}
	require.NoError(t, bad.Write(path))

	got := Load(path)
	assert.Equal(t, "info", got.LogLevel)
}

func TestLoadRejectsKeyWithoutApplicationKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	bad := Config{KeyID: "key1", LogLevel: "info", RetryCount: 3, UploadConnections: 1, DownloadConnections: 1}
	require.NoError(t, bad.Write(path))

	got := Load(path)
	assert.Equal(t, createDefaultConfig(), *got, "invalid config should fall back entirely to defaults")
}
