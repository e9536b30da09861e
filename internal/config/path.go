package config

import (
	"os"
	"path/filepath"
)

const (
	configName = "compage"
	envPrefix  = "COMPAGE"
	envDirVar  = "COMPAGE_CONFIG_DIR"
)

// ConfigDir returns the default config directory path.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, ".config", configName)
}

// DefaultConfigPath returns the default path for the settings file.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), configName+".yaml")
}

// searchPaths returns the directories searched for the settings file in
// priority order: $COMPAGE_CONFIG_DIR, ~/.config/compage, then ".".
func searchPaths() []string {
	var paths []string
	if dir := os.Getenv(envDirVar); dir != "" {
		paths = append(paths, dir)
	}
	if dir := ConfigDir(); dir != "" {
		paths = append(paths, dir)
	}
	return append(paths, ".")
}

// expandHome expands a leading ~ in path to the user's home directory.
// Only expands "~" alone or "~/..." patterns. Patterns like "~user" are not expanded.
// ExpandPath replaces a leading "~" with the user's home directory.
func ExpandPath(path string) string {
	return expandHome(path)
}

func expandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	if len(path) > 1 && path[1] != '/' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if len(path) == 1 {
		return home
	}
	return filepath.Join(home, path[2:])
}

// ConfigExists reports whether a settings file exists at the default path.
func ConfigExists() bool {
	return ConfigExistsAt(DefaultConfigPath())
}

// ConfigExistsAt reports whether a settings file exists at path.
func ConfigExistsAt(path string) bool {
	_, err := os.Stat(expandHome(path))
	return err == nil
}
