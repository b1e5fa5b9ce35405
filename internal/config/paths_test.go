package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConfigDir(t *testing.T) {
	t.Run("default directory", func(t *testing.T) {
		t.Setenv(ConfigDirEnv, "")
		dir, err := GetConfigDir()
		require.NoError(t, err)

		homeDir, err := os.UserHomeDir()
		require.NoError(t, err)

		expected := filepath.Join(homeDir, DefaultConfigDir)
		assert.Equal(t, expected, dir)
	})

	t.Run("environment override", func(t *testing.T) {
		customDir := "/custom/config/dir"
		t.Setenv(ConfigDirEnv, customDir)

		dir, err := GetConfigDir()
		require.NoError(t, err)
		assert.Equal(t, customDir, dir)
	})
}

func TestGlobalConfigPath(t *testing.T) {
	t.Setenv(ConfigDirEnv, "/tmp/edgefn-test")

	path, err := GlobalConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/edgefn-test", GlobalConfigName), path)
}

func TestLocalConfigPath(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)

	path, err := LocalConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, LocalConfigName), path)
}
