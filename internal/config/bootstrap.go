package config

import (
	"errors"
	"os"
	"path/filepath"
)

// UserConfigName is the file EnsureUserConfig creates in the data dir.
const UserConfigName = "config.yml"

// EnsureUserConfig seeds the data dir with the shipped default config on
// first start. The user copy is the one the engine loads and the /config
// endpoint rewrites; the shipped file is never touched after this.
func EnsureUserConfig(dataDir string, defaultPath string) (string, error) {
	userPath := filepath.Join(dataDir, UserConfigName)

	switch _, err := os.Stat(userPath); {
	case err == nil:
		return userPath, nil
	case !errors.Is(err, os.ErrNotExist):
		return "", err
	}

	b, err := os.ReadFile(defaultPath)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(userPath, b, 0o644); err != nil {
		return "", err
	}
	return userPath, nil
}
