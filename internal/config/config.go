package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/spf13/viper"
)

var (
	// configFilePath stores the path to the loaded settings file
	configFilePath string

	mu      sync.RWMutex
	current *Config
)

// Init initializes the configuration subsystem on the global viper instance.
// When path is empty it searches for compage.yaml in priority order:
//  1. Directory specified by COMPAGE_CONFIG_DIR environment variable
//  2. ~/.config/compage/
//  3. Current working directory (.)
//
// If no settings file is found, defaults and COMPAGE_* variables are used.
// If a file exists but is invalid or unreadable, Init returns an error.
func Init(path string) error {
	configure(viper.GetViper())

	if path != "" {
		viper.SetConfigFile(expandHome(path))
	} else {
		for _, p := range searchPaths() {
			viper.AddConfigPath(p)
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config; %w", err)
		}
		configFilePath = ""
	} else {
		configFilePath = viper.ConfigFileUsed()
	}

	cfg, err := unmarshalConfig(viper.GetViper())
	if err != nil {
		return err
	}
	setCurrent(cfg)

	slog.Debug("config initialized", "file", configFilePath)
	return nil
}

// Get returns the active configuration. Before Init it returns the defaults.
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	if current == nil {
		cfg := NewDefaultConfig()
		return &cfg
	}
	c := *current
	return &c
}

func setCurrent(cfg *Config) {
	mu.Lock()
	current = cfg
	mu.Unlock()
}

// ConfigFilePath returns the path to the loaded settings file,
// or empty string if using defaults only.
func ConfigFilePath() string {
	return configFilePath
}

// Reset clears the configuration state for testing purposes.
func Reset() {
	viper.Reset()
	configFilePath = ""
	setCurrent(nil)
}

// GetString returns the string value for the given key.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns the integer value for the given key.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns the boolean value for the given key.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// Set sets a value for the given key, overriding defaults and file values.
// Set does not revalidate; call Reload to refresh Get.
func Set(key string, value any) {
	viper.Set(key, value)
}

// GetPath returns the string value for the given key with ~ expanded to $HOME.
func GetPath(key string) string {
	return expandHome(viper.GetString(key))
}

// EnsureConfigDir creates the config directory if it doesn't exist.
func EnsureConfigDir() error {
	dir := ConfigDir()
	if dir == "" {
		return fmt.Errorf("failed to resolve config directory; %w", os.ErrNotExist)
	}
	return os.MkdirAll(dir, 0755)
}

// Reload re-reads the settings file from disk.
// On failure, the previous configuration is retained.
func Reload() (*Config, error) {
	if configFilePath != "" {
		if err := viper.ReadInConfig(); err != nil {
			slog.Error("config reload failed; retaining previous values", "error", err)
			return nil, fmt.Errorf("failed to reload config; %w", err)
		}
	}

	cfg, err := unmarshalConfig(viper.GetViper())
	if err != nil {
		slog.Error("config reload failed; retaining previous values", "error", err)
		return nil, fmt.Errorf("failed to reload config; %w", err)
	}
	setCurrent(cfg)

	slog.Info("config reloaded", "file", configFilePath)
	return cfg, nil
}
