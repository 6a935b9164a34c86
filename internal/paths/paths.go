// Package paths resolves configuration and data directory locations.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

const appDirName = "vault"

// CWD-relative directory names used when no override is active.
const (
	DefaultConfigDirName = ".vault"
	DefaultDataDirName   = ".vault-db"
)

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "VAULT_CONFIG_DIR"
	EnvDataDir   = "VAULT_DATA_DIR"
)

// DefaultConfigDir returns the platform default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/vault (fallback ~/.config/vault)
// macOS:   ~/Library/Application Support/vault
// Windows: %APPDATA%/vault
func DefaultConfigDir() (string, error) {
	return platformDefault("XDG_CONFIG_HOME", ".config")
}

// DefaultDataDir returns the platform default data directory.
//
// Linux:   $XDG_DATA_HOME/vault (fallback ~/.local/share/vault)
// macOS:   ~/Library/Application Support/vault
// Windows: %APPDATA%/vault
func DefaultDataDir() (string, error) {
	return platformDefault("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

// platformDefault picks the per-user base directory for this platform and
// appends the app directory. On Linux the XDG variable wins over the
// home-relative fallback; elsewhere os.UserConfigDir already encodes the
// convention (~/Library/Application Support on macOS, %APPDATA% on Windows).
func platformDefault(xdgVar, homeRel string) (string, error) {
	if runtime.GOOS != "linux" {
		base, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(base, appDirName), nil
	}
	if xdg := os.Getenv(xdgVar); xdg != "" {
		return filepath.Join(xdg, appDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, homeRel, appDirName), nil
}

// ResolveConfigDir returns the configuration directory following the
// precedence chain: flag > VAULT_CONFIG_DIR env > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if dir := firstNonEmpty(flag, os.Getenv(EnvConfigDir)); dir != "" {
		return filepath.Abs(dir)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory following the precedence chain:
// flag > config file value > VAULT_DATA_DIR env > $(CWD)/.vault-db.
func ResolveDataDir(flag, configValue string) (string, error) {
	if dir := firstNonEmpty(flag, configValue, os.Getenv(EnvDataDir)); dir != "" {
		return filepath.Abs(dir)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDataDirName), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
