package secrets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/catalystcommunity/edgefn/internal/config"
)

const (
	// KeyringService is the service name used in the OS keyring
	KeyringService = "edgefn"
	// keyringUserPrefix prefixes the context name to form the keyring account
	keyringUserPrefix = "context:"
	// tokenDirName is the directory under the config dir for fallback file storage
	tokenDirName = "tokens"
)

// ErrTokenNotFound is returned when no token is stored for a context
var ErrTokenNotFound = errors.New("no access token found in keyring or file storage")

// StoreAccessToken stores the access token for an identity context in the OS keyring
// Falls back to file storage if keyring is unavailable
func StoreAccessToken(contextName, token string) error {
	if contextName == "" {
		return fmt.Errorf("context name cannot be empty")
	}
	if token == "" {
		return fmt.Errorf("token cannot be empty")
	}

	err := keyring.Set(KeyringService, keyringUser(contextName), token)
	if err == nil {
		return nil
	}

	return storeTokenInFile(contextName, token)
}

// LoadAccessToken retrieves the access token for an identity context
// Falls back to file storage if keyring is unavailable
func LoadAccessToken(contextName string) (string, error) {
	token, err := keyring.Get(KeyringService, keyringUser(contextName))
	if err == nil {
		return token, nil
	}

	return loadTokenFromFile(contextName)
}

// ClearAccessToken removes the access token for an identity context from storage
func ClearAccessToken(contextName string) error {
	keyringErr := keyring.Delete(KeyringService, keyringUser(contextName))
	if errors.Is(keyringErr, keyring.ErrNotFound) {
		keyringErr = nil
	}

	fileErr := deleteTokenFile(contextName)

	if keyringErr != nil && fileErr != nil {
		return fmt.Errorf("failed to clear token from keyring (%v) and file (%v)", keyringErr, fileErr)
	}

	return nil
}

func keyringUser(contextName string) string {
	return keyringUserPrefix + contextName
}

// storeTokenInFile stores the token in a file with restrictive permissions
func storeTokenInFile(contextName, token string) error {
	tokenPath, err := getTokenFilePath(contextName)
	if err != nil {
		return fmt.Errorf("failed to get token file path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(tokenPath), 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(tokenPath, []byte(token), 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}

	return nil
}

// loadTokenFromFile loads the token from file storage
func loadTokenFromFile(contextName string) (string, error) {
	tokenPath, err := getTokenFilePath(contextName)
	if err != nil {
		return "", fmt.Errorf("failed to get token file path: %w", err)
	}

	data, err := os.ReadFile(tokenPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrTokenNotFound
		}
		return "", fmt.Errorf("failed to read token file: %w", err)
	}

	return strings.TrimSpace(string(data)), nil
}

// deleteTokenFile removes the token file if it exists
func deleteTokenFile(contextName string) error {
	tokenPath, err := getTokenFilePath(contextName)
	if err != nil {
		return fmt.Errorf("failed to get token file path: %w", err)
	}

	if err := os.Remove(tokenPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete token file: %w", err)
	}

	return nil
}

// getTokenFilePath returns the path to the token file for a context
// Respects EDGEFN_CONFIG_DIR environment variable if set
func getTokenFilePath(contextName string) (string, error) {
	if contextName == "" || strings.ContainsAny(contextName, `/\`) || contextName == "." || contextName == ".." {
		return "", fmt.Errorf("invalid context name: %q", contextName)
	}

	configDir, err := config.GetConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, tokenDirName, contextName), nil
}
