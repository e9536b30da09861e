package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// newViper creates a viper instance with the compage env binding and defaults.
func newViper() *viper.Viper {
	v := viper.New()
	configure(v)
	return v
}

func configure(v *viper.Viper) {
	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
}

// Load reads the settings file from the search path. A missing file is not
// an error: defaults and COMPAGE_* environment variables apply. It returns
// the path of the file used, or "".
func Load() (*Config, string, error) {
	v := newViper()
	for _, p := range searchPaths() {
		v.AddConfigPath(p)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, "", fmt.Errorf("failed to read config; %w", err)
		}
	}

	cfg, err := unmarshalConfig(v)
	if err != nil {
		return nil, "", err
	}
	return cfg, v.ConfigFileUsed(), nil
}

// LoadFromPath reads configuration from a specific file path.
func LoadFromPath(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(expandHome(path))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config from %s; %w", path, err)
	}

	return unmarshalConfig(v)
}

// unmarshalConfig converts viper config to a validated Config.
func unmarshalConfig(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config; %w", err)
	}

	cfg.LogFile = expandHome(cfg.LogFile)
	cfg.PIDFile = expandHome(cfg.PIDFile)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
