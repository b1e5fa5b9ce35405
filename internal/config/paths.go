package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultConfigDir is the default directory name for edgefn global state
	DefaultConfigDir = ".edgefn"
	// GlobalConfigName is the file holding globally stored settings
	GlobalConfigName = "config.yaml"
	// LocalConfigName is the file holding settings stored for the current directory
	LocalConfigName = ".edgefn.yaml"
	// ConfigDirEnv overrides the global config directory
	ConfigDirEnv = "EDGEFN_CONFIG_DIR"
)

// GetConfigDir returns the edgefn configuration directory path
// Defaults to ~/.edgefn/ unless overridden by environment
func GetConfigDir() (string, error) {
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return dir, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, DefaultConfigDir), nil
}

// GlobalConfigPath returns the path of the global settings file
func GlobalConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, GlobalConfigName), nil
}

// LocalConfigPath returns the path of the settings file for the working directory
func LocalConfigPath() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return filepath.Join(wd, LocalConfigName), nil
}
