package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenNoConfigFilePresent(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoadReadsConfigFromCurrentDirectory(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeConfigFile(t, dir, "cc: clang\nverbose: true\n")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "clang", cfg.CC)
	assert.True(t, cfg.Verbose)
}

func TestLoadReadsConfigFromHomeDirectory(t *testing.T) {
	// No .hpc.yaml in the current directory, so Load must fall back to
	// $HOME.
	t.Chdir(t.TempDir())

	home := t.TempDir()
	t.Setenv("HOME", home)
	writeConfigFile(t, home, "cc: tcc\nkeep_c: true\n")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "tcc", cfg.CC)
	assert.True(t, cfg.KeepC)
}

func TestLoadPrefersCurrentDirectoryOverHome(t *testing.T) {
	cwd := t.TempDir()
	t.Chdir(cwd)
	writeConfigFile(t, cwd, "cc: clang\n")

	home := t.TempDir()
	t.Setenv("HOME", home)
	writeConfigFile(t, home, "cc: tcc\n")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "clang", cfg.CC)
}

func writeConfigFile(t *testing.T, dir, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hpc.yaml"), []byte(contents), 0o644))
}
