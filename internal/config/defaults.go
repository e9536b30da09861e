package config

import "github.com/spf13/viper"

// Default configuration values.
const (
	DefaultLogLevel = "info"
	// DefaultLogFile is empty: log to stderr only unless a file is configured.
	DefaultLogFile         = ""
	DefaultShutdownTimeout = 10 // seconds
	DefaultPIDFile         = ""
	DefaultSystemdNotify   = false

	DefaultHTTPEnabled = false
	DefaultHTTPBind    = "127.0.0.1"
	DefaultHTTPPort    = 7700

	DefaultMetricsInterval = 15 // seconds
)

// setDefaults registers all default configuration values with v.
func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_file", DefaultLogFile)
	v.SetDefault("shutdown_timeout", DefaultShutdownTimeout)
	v.SetDefault("pid_file", DefaultPIDFile)
	v.SetDefault("systemd_notify", DefaultSystemdNotify)

	v.SetDefault("http.enabled", DefaultHTTPEnabled)
	v.SetDefault("http.bind", DefaultHTTPBind)
	v.SetDefault("http.port", DefaultHTTPPort)

	v.SetDefault("metrics.collection_interval", DefaultMetricsInterval)
}
