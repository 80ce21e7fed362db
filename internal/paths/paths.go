// Package paths provides sudo-aware path resolution for releasescan.
//
// When running with sudo, these functions resolve paths to the original
// user's directories (via SUDO_USER) instead of root's directories.
package paths

import (
	"os"
	"os/user"
	"path/filepath"
)

const appName = "releasescan"

// UserHomeDir returns the home directory of the actual user.
// If running with sudo, returns the SUDO_USER's home directory, not root's.
func UserHomeDir() (string, error) {
	if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" && sudoUser != "root" {
		u, err := user.Lookup(sudoUser)
		if err == nil {
			return u.HomeDir, nil
		}
	}
	return os.UserHomeDir()
}

// AppDir returns ~/.config/releasescan for the actual user, or
// $RELEASESCAN_HOME when set.
func AppDir() (string, error) {
	if dir := os.Getenv("RELEASESCAN_HOME"); dir != "" {
		return dir, nil
	}
	homeDir, err := UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", appName), nil
}

func inAppDir(elem ...string) (string, error) {
	dir, err := AppDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{dir}, elem...)...), nil
}

// ConfigPath returns the path to config.toml.
func ConfigPath() (string, error) {
	return inAppDir("config.toml")
}

// DatabasePath returns the path to the release database.
func DatabasePath() (string, error) {
	return inAppDir("releases.db")
}

// ActivityDir returns the directory holding the found-release journal.
func ActivityDir() (string, error) {
	return inAppDir("activity")
}

// LogPath returns the default log file path.
func LogPath() (string, error) {
	return inAppDir("logs", appName+".log")
}

// ActualUser returns the actual username (not root when using sudo).
func ActualUser() string {
	if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" && sudoUser != "root" {
		return sudoUser
	}
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return "unknown"
}
