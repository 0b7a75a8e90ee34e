// Package paths resolves the larder configuration and data directories.
//
// Both follow the same precedence chain: command-line flag, then
// environment variable, then a platform default. Data directories may also
// come from config.yaml, which ranks between the flag and the environment.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "larder"

// Environment variables that override the platform defaults.
const (
	EnvConfigDir = "LARDER_CONFIG_DIR"
	EnvDataDir   = "LARDER_DATA_DIR"
)

// platformDir holds platform lookups that tests replace.
var platformDir = struct {
	goos          string
	getenv        func(string) string
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	goos:          runtime.GOOS,
	getenv:        os.Getenv,
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// xdgDir returns $xdgVar/larder, or ~/fallback.../larder when the variable
// is unset. It is the Linux layout; elsewhere os.UserConfigDir is used for
// both configuration and data.
func xdgDir(xdgVar string, fallback ...string) (string, error) {
	if platformDir.goos != "linux" {
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, appName), nil
	}
	if xdg := platformDir.getenv(xdgVar); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	parts := append([]string{home}, fallback...)
	return filepath.Join(append(parts, appName)...), nil
}

// DefaultConfigDir returns the platform configuration directory.
//
//	Linux:   $XDG_CONFIG_HOME/larder (fallback ~/.config/larder)
//	macOS:   ~/Library/Application Support/larder
//	Windows: %APPDATA%/larder
func DefaultConfigDir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// DefaultDataDir returns the platform data directory.
//
//	Linux:   $XDG_DATA_HOME/larder (fallback ~/.local/share/larder)
//	macOS and Windows: same as DefaultConfigDir
func DefaultDataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", ".local", "share")
}

// firstAbs returns the first non-empty candidate made absolute, or "" when
// every candidate is empty.
func firstAbs(candidates ...string) (string, error) {
	for _, c := range candidates {
		if c != "" {
			return filepath.Abs(c)
		}
	}
	return "", nil
}

// ResolveConfigDir returns flag, LARDER_CONFIG_DIR or DefaultConfigDir, in
// that order. Explicit values are made absolute.
func ResolveConfigDir(flag string) (string, error) {
	dir, err := firstAbs(flag, platformDir.getenv(EnvConfigDir))
	if err != nil || dir != "" {
		return dir, err
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns flag, the config.yaml value, LARDER_DATA_DIR or
// DefaultDataDir, in that order. Explicit values are made absolute.
func ResolveDataDir(flag, configValue string) (string, error) {
	dir, err := firstAbs(flag, configValue, platformDir.getenv(EnvDataDir))
	if err != nil || dir != "" {
		return dir, err
	}
	return DefaultDataDir()
}
