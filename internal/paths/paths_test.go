package paths

import (
	"os"
	"os/user"
	"path/filepath"
	"testing"
)

func TestUserHomeDir_NoSudo(t *testing.T) {
	t.Setenv("SUDO_USER", "")

	got, err := UserHomeDir()
	if err != nil {
		t.Fatalf("UserHomeDir() error = %v", err)
	}

	expected, _ := os.UserHomeDir()
	if got != expected {
		t.Errorf("UserHomeDir() = %q, want %q", got, expected)
	}
}

func TestUserHomeDir_WithSudoUser(t *testing.T) {
	currentUser, err := user.Current()
	if err != nil {
		t.Skip("Cannot get current user")
	}
	if currentUser.Username == "root" {
		t.Skip("SUDO_USER=root is ignored")
	}
	t.Setenv("SUDO_USER", currentUser.Username)

	got, err := UserHomeDir()
	if err != nil {
		t.Fatalf("UserHomeDir() error = %v", err)
	}
	if got != currentUser.HomeDir {
		t.Errorf("UserHomeDir() = %q, want %q", got, currentUser.HomeDir)
	}
}

func TestUserHomeDir_NonexistentUser(t *testing.T) {
	t.Setenv("SUDO_USER", "nonexistent_user_12345")

	got, err := UserHomeDir()
	if err != nil {
		t.Fatalf("UserHomeDir() error = %v", err)
	}
	expected, _ := os.UserHomeDir()
	if got != expected {
		t.Errorf("UserHomeDir() = %q, want %q", got, expected)
	}
}

func TestAppDirOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("RELEASESCAN_HOME", dir)

	cfg, err := ConfigPath()
	if err != nil {
		t.Fatal(err)
	}
	if cfg != filepath.Join(dir, "config.toml") {
		t.Errorf("ConfigPath() = %q", cfg)
	}

	db, _ := DatabasePath()
	if db != filepath.Join(dir, "releases.db") {
		t.Errorf("DatabasePath() = %q", db)
	}

	logPath, _ := LogPath()
	if logPath != filepath.Join(dir, "logs", "releasescan.log") {
		t.Errorf("LogPath() = %q", logPath)
	}
}
