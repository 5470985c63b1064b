package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetXDGDirs_RespectsEnvironment(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-config")
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")
	t.Setenv("XDG_STATE_HOME", "/tmp/xdg-state")

	dirs, err := GetXDGDirs()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("/tmp/xdg-config", "panetree"), dirs.ConfigHome)
	assert.Equal(t, filepath.Join("/tmp/xdg-data", "panetree"), dirs.DataHome)
	assert.Equal(t, filepath.Join("/tmp/xdg-state", "panetree"), dirs.StateHome)
}

func TestGetXDGDirs_FallsBackToHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("ENV", "")
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("XDG_DATA_HOME", "")
	t.Setenv("XDG_STATE_HOME", "")

	dirs, err := GetXDGDirs()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".config", "panetree"), dirs.ConfigHome)
	assert.Equal(t, filepath.Join(home, ".local", "share", "panetree"), dirs.DataHome)
	assert.Equal(t, filepath.Join(home, ".local", "state", "panetree"), dirs.StateHome)
}

func TestGetXDGDirs_DevMode(t *testing.T) {
	t.Setenv("ENV", "dev")

	cwd, err := os.Getwd()
	require.NoError(t, err)

	dirs, err := GetXDGDirs()
	require.NoError(t, err)

	devDir := filepath.Join(cwd, ".dev", "panetree")
	assert.Equal(t, devDir, dirs.ConfigHome)
	assert.Equal(t, devDir, dirs.DataHome)
	assert.Equal(t, devDir, dirs.StateHome)
}

func TestGetDatabaseFile(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")

	path, err := GetDatabaseFile()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("/tmp/xdg-data", "panetree", "panetree.sqlite"), path)
}
