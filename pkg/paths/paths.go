// Package paths resolves the per-user directories execfmt reads and writes.
// It follows the XDG Base Directory layout, with EXECFMT_* variables taking
// precedence over the XDG ones.
package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/arthur-debert/execfmt/pkg/errors"
)

// Environment variable names
const (
	// EnvConfigDir overrides the config directory
	EnvConfigDir = "EXECFMT_CONFIG_DIR"

	// EnvCacheDir overrides the cache directory
	EnvCacheDir = "EXECFMT_CACHE_DIR"

	// EnvStateDir overrides the state directory holding the log file
	EnvStateDir = "EXECFMT_STATE_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Directory and file names
const (
	// DirName is the directory created under each XDG base directory
	DirName = "execfmt"

	// UserConfigFile is the per-user configuration file name
	UserConfigFile = "config.toml"

	// LogFileName is the name of the log file
	LogFileName = "execfmt.log"
)

// ConfigDir returns the per-user config directory, or "" when no base
// directory can be determined.
func ConfigDir() string {
	return resolve(EnvConfigDir, "XDG_CONFIG_HOME", xdg.ConfigHome)
}

// CacheDir returns the directory holding formatting caches.
func CacheDir() string {
	return resolve(EnvCacheDir, "XDG_CACHE_HOME", xdg.CacheHome)
}

// StateDir returns the directory holding the log file.
func StateDir() string {
	return resolve(EnvStateDir, "XDG_STATE_HOME", xdg.StateHome)
}

// UserConfigPath returns the per-user configuration file.
func UserConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, UserConfigFile)
}

// LogFilePath returns the log file location, falling back to the working
// directory when no state directory exists.
func LogFilePath() string {
	dir := StateDir()
	if dir == "" {
		return LogFileName
	}
	return filepath.Join(dir, LogFileName)
}

// resolve applies, in order: the execfmt override (used as is), the XDG
// variable read at call time, then the base xdg computed at startup. The
// last two get DirName appended.
func resolve(override, xdgEnv, xdgDefault string) string {
	if dir := os.Getenv(override); dir != "" {
		return ExpandHome(dir)
	}
	base := os.Getenv(xdgEnv)
	if base == "" {
		base = xdgDefault
	}
	if base == "" {
		return ""
	}
	return filepath.Join(ExpandHome(base), DirName)
}

// ExpandHome expands a leading ~ to the home directory. Paths it cannot
// expand are returned unchanged.
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := GetHomeDirectory()
	if err != nil {
		return path
	}
	if len(path) == 1 {
		return homeDir
	}
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}
	// ~user is not supported
	return path
}

// GetHomeDirectory returns the user's home directory, falling back to $HOME
func GetHomeDirectory() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err == nil && homeDir != "" {
		return homeDir, nil
	}
	if home := os.Getenv(EnvHome); home != "" {
		return home, nil
	}
	return "", errors.Wrap(err, errors.ErrFileAccess, "failed to get home directory")
}
