// Package subcommands provides the config subcommands (show, init, validate, reset).
package subcommands

import "github.com/leefowlercu/compage/internal/config"

// settingsPath returns the settings file in use, or the default location
// when running on defaults only.
func settingsPath() string {
	if path := config.ConfigFilePath(); path != "" {
		return path
	}
	return config.DefaultConfigPath()
}
