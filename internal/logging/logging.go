package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	slogmulti "github.com/samber/slog-multi"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation bounds the size and history of the log file.
type Rotation struct {
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultRotation keeps five 10 MB files for four weeks.
var DefaultRotation = Rotation{
	MaxSizeMB:  10,
	MaxBackups: 5,
	MaxAgeDays: 28,
}

// Manager handles logger lifecycle including bootstrap-to-full mode transitions.
// Components should obtain a logger via Logger() and use it for all logging.
type Manager struct {
	handler *SwappableHandler
	logger  *slog.Logger
	logFile *lumberjack.Logger
	stderr  io.Writer
	level   *slog.LevelVar
	mu      sync.Mutex
}

// NewManager creates a logging manager in bootstrap mode.
// Bootstrap mode writes only to stderr using text format.
// Call Upgrade() after config is available to enable file logging.
func NewManager() *Manager {
	return newManager(os.Stderr)
}

func newManager(stderr io.Writer) *Manager {
	level := new(slog.LevelVar)
	level.Set(DefaultLevel)

	bootstrap := slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})
	handler := NewSwappableHandler(bootstrap)

	return &Manager{
		handler: handler,
		logger:  slog.New(handler),
		stderr:  stderr,
		level:   level,
	}
}

// Logger returns the current logger instance.
// The returned logger is stable across Upgrade calls.
func (m *Manager) Logger() *slog.Logger {
	return m.logger
}

// Upgrade transitions from bootstrap mode to stderr text plus a rotated JSON
// log file, using DefaultRotation. An empty path only applies the level.
func (m *Manager) Upgrade(logFilePath string, level slog.Level) error {
	return m.UpgradeWithRotation(logFilePath, level, DefaultRotation)
}

// UpgradeWithRotation is Upgrade with explicit rotation limits.
func (m *Manager) UpgradeWithRotation(logFilePath string, level slog.Level, rot Rotation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.level.Set(level)
	if logFilePath == "" {
		return nil
	}

	dir := filepath.Dir(logFilePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory %q; %w", dir, err)
	}

	// lumberjack opens lazily; probe now so a bad path fails at startup.
	probe, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file %q; %w", logFilePath, err)
	}
	_ = probe.Close()

	if m.logFile != nil {
		_ = m.logFile.Close()
	}
	m.logFile = &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    rot.MaxSizeMB,
		MaxBackups: rot.MaxBackups,
		MaxAge:     rot.MaxAgeDays,
		Compress:   rot.Compress,
	}

	opts := &slog.HandlerOptions{Level: m.level}
	m.handler.Swap(slogmulti.Fanout(
		slog.NewTextHandler(m.stderr, opts),
		slog.NewJSONHandler(m.logFile, opts),
	))

	return nil
}

// SetLevel changes the log level at runtime.
func (m *Manager) SetLevel(level slog.Level) {
	m.level.Set(level)
}

// Level returns the current log level.
func (m *Manager) Level() slog.Level {
	return m.level.Level()
}

// Rotate closes the current log file and starts a new one.
func (m *Manager) Rotate() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.logFile == nil {
		return nil
	}
	if err := m.logFile.Rotate(); err != nil {
		return fmt.Errorf("failed to rotate log file; %w", err)
	}
	return nil
}

// Close cleanly shuts down the logger, closing any open file handles.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.logFile != nil {
		err := m.logFile.Close()
		m.logFile = nil
		return err
	}
	return nil
}
