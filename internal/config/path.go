// Package config resolves ledger settings from flags, environment, .env and
// the YAML config file.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// AppName names the per-user directories under ~/.config and ~/.local/share.
const AppName = "ledger"

// Dir returns the per-user configuration directory, or "" when the home
// directory cannot be determined.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", AppName)
}

// ExpandPath resolves a leading ~ and $VAR references. Other paths are
// returned unchanged.
func ExpandPath(path string) string {
	switch {
	case path == "":
		return ""
	case path == "~", strings.HasPrefix(path, "~/"):
		if home, err := os.UserHomeDir(); err == nil {
			path = home + strings.TrimPrefix(path, "~")
		}
	}
	return filepath.Clean(os.ExpandEnv(path))
}
