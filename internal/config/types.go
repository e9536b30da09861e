package config

import "time"

// Config is the process configuration of the compage host. The component
// configuration itself lives in the ini file handled by the engine loader.
type Config struct {
	LogLevel        string        `yaml:"log_level" mapstructure:"log_level"`
	LogFile         string        `yaml:"log_file" mapstructure:"log_file"`
	ShutdownTimeout int           `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"` // seconds
	PIDFile         string        `yaml:"pid_file" mapstructure:"pid_file"`
	SystemdNotify   bool          `yaml:"systemd_notify" mapstructure:"systemd_notify"`
	HTTP            HTTPConfig    `yaml:"http" mapstructure:"http"`
	Metrics         MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

// HTTPConfig holds the introspection server configuration.
type HTTPConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Bind    string `yaml:"bind" mapstructure:"bind"`
	Port    int    `yaml:"port" mapstructure:"port"`
}

// MetricsConfig holds metrics collection configuration.
type MetricsConfig struct {
	CollectionInterval int `yaml:"collection_interval" mapstructure:"collection_interval"` // seconds
}

// ShutdownDuration returns ShutdownTimeout as a duration.
func (c *Config) ShutdownDuration() time.Duration {
	return time.Duration(c.ShutdownTimeout) * time.Second
}

// CollectionDuration returns the metrics collection interval as a duration.
func (c *Config) CollectionDuration() time.Duration {
	return time.Duration(c.Metrics.CollectionInterval) * time.Second
}

// NewDefaultConfig returns a Config populated with the default values.
func NewDefaultConfig() Config {
	return Config{
		LogLevel:        DefaultLogLevel,
		LogFile:         DefaultLogFile,
		ShutdownTimeout: DefaultShutdownTimeout,
		PIDFile:         DefaultPIDFile,
		SystemdNotify:   DefaultSystemdNotify,
		HTTP: HTTPConfig{
			Enabled: DefaultHTTPEnabled,
			Bind:    DefaultHTTPBind,
			Port:    DefaultHTTPPort,
		},
		Metrics: MetricsConfig{
			CollectionInterval: DefaultMetricsInterval,
		},
	}
}
