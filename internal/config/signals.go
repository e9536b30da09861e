package config

import (
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// reloadMu serializes reloads started by SIGHUP and by the settings watcher.
var reloadMu sync.Mutex

// Only log_level is applied to a running host; everything else is read when
// the runtime and daemon are built.
func restartRequired(prev, next *Config) []string {
	var keys []string
	if prev.LogFile != next.LogFile {
		keys = append(keys, "log_file")
	}
	if prev.ShutdownTimeout != next.ShutdownTimeout {
		keys = append(keys, "shutdown_timeout")
	}
	if prev.PIDFile != next.PIDFile {
		keys = append(keys, "pid_file")
	}
	if prev.SystemdNotify != next.SystemdNotify {
		keys = append(keys, "systemd_notify")
	}
	if prev.HTTP != next.HTTP {
		keys = append(keys, "http")
	}
	if prev.Metrics != next.Metrics {
		keys = append(keys, "metrics")
	}
	return keys
}

// reloadFrom reloads the settings file on behalf of source and hands the
// result to onReload. It reports false when another reload was in progress
// or the file did not load; the previous settings then stay active.
func reloadFrom(source string, onReload func(*Config)) bool {
	if !reloadMu.TryLock() {
		slog.Debug("settings reload already in progress; ignoring", "source", source)
		return false
	}
	defer reloadMu.Unlock()

	prev := Get()
	cfg, err := Reload()
	if err != nil {
		return false
	}
	if keys := restartRequired(prev, cfg); len(keys) > 0 {
		slog.Warn("changed settings take effect after a host restart", "source", source, "settings", keys)
	}
	if onReload != nil {
		onReload(cfg)
	}
	return true
}

// hupHandler owns one SIGHUP subscription.
type hupHandler struct {
	sigCh chan os.Signal
	stop  chan struct{}
	done  chan struct{}
}

var (
	hupMu     sync.Mutex
	activeHUP *hupHandler
)

// SetupSignalHandler reloads the settings file on every SIGHUP and passes
// the new configuration to onReload, which may be nil. A SIGHUP arriving
// during a reload is dropped. Calling it again replaces the running handler.
func SetupSignalHandler(onReload func(*Config)) {
	hupMu.Lock()
	defer hupMu.Unlock()

	activeHUP.shutdown()
	activeHUP = startHUPHandler(onReload)
}

// StopSignalHandler stops the SIGHUP handler and waits for it to exit.
func StopSignalHandler() {
	hupMu.Lock()
	h := activeHUP
	activeHUP = nil
	hupMu.Unlock()

	h.shutdown()
}

func startHUPHandler(onReload func(*Config)) *hupHandler {
	h := &hupHandler{
		sigCh: make(chan os.Signal, 1),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	signal.Notify(h.sigCh, syscall.SIGHUP)
	go h.run(onReload)
	return h
}

func (h *hupHandler) run(onReload func(*Config)) {
	defer close(h.done)
	defer signal.Stop(h.sigCh)

	for {
		select {
		case <-h.stop:
			return
		case <-h.sigCh:
			slog.Info("received SIGHUP; reloading settings", "file", ConfigFilePath())
			reloadFrom("sighup", onReload)
		}
	}
}

// shutdown is a no-op on a nil handler.
func (h *hupHandler) shutdown() {
	if h == nil {
		return
	}
	close(h.stop)
	<-h.done
}
