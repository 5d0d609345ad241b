package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vqhuy/arczip/backend"
)

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, backend.DefaultType, cfg.Backend)
	assert.Contains(t, cfg.Exclude, ".git")
}

func TestLoad_File(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	require.NoError(t, os.MkdirAll(filepath.Join(home, ".arczip"), 0777))
	require.NoError(t, os.WriteFile(filepath.Join(home, ".arczip", "config.yaml"), []byte("backend: archives\nexclude: [\"*.tmp\"]\n"), 0666))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "archives", cfg.Backend)
	assert.Equal(t, []string{"*.tmp"}, cfg.Exclude)
}

func TestLoad_Malformed(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	require.NoError(t, os.MkdirAll(filepath.Join(home, ".arczip"), 0777))
	require.NoError(t, os.WriteFile(filepath.Join(home, ".arczip", "config.yaml"), []byte("{not yaml"), 0666))

	_, err := Load()
	assert.Error(t, err)
}
