package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// settingsHeader explains where component configuration goes and which
// settings a running host picks up.
const settingsHeader = `# compage settings
# Generated: %s
#
# Component instances are configured in the ini file passed to compage.
# log_level is applied on SIGHUP or when this file changes; the other
# settings are read when the host starts.

`

// Write stores cfg at path with 0600 permissions, creating the directory
// with 0700. The file is replaced by rename so a running host's settings
// watcher never reads a partial file.
func Write(cfg *Config, path string) error {
	path = expandHome(path)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create settings directory %s; %w", dir, err)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, settingsHeader, time.Now().Format(time.RFC3339))
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to marshal settings; %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to marshal settings; %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to write settings file %s; %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write settings file %s; %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write settings file %s; %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace settings file %s; %w", path, err)
	}

	return nil
}

// WriteDefault writes cfg to the default settings path.
func WriteDefault(cfg *Config) error {
	return Write(cfg, DefaultConfigPath())
}
