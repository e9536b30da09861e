// Package daemon hosts a loaded runtime for a long-running launch: it claims
// the PID file, serves the introspection endpoints, exports metrics, tells
// systemd when the instances are up, and tears everything down on shutdown.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	sddaemon "github.com/coreos/go-systemd/v22/daemon"

	"github.com/leefowlercu/compage/engine"
	"github.com/leefowlercu/compage/internal/config"
	"github.com/leefowlercu/compage/internal/metrics"
	"github.com/leefowlercu/compage/internal/version"
)

// DaemonState represents the lifecycle state of the daemon.
type DaemonState string

const (
	// DaemonStateStarting indicates the daemon is claiming resources and launching.
	DaemonStateStarting DaemonState = "starting"

	// DaemonStateRunning indicates the instances are launched.
	DaemonStateRunning DaemonState = "running"

	// DaemonStateStopping indicates instances are being cancelled and joined.
	DaemonStateStopping DaemonState = "stopping"

	// DaemonStateStopped indicates the daemon has terminated.
	DaemonStateStopped DaemonState = "stopped"
)

// IsTerminal returns true if this state is a terminal state (no further transitions).
func (s DaemonState) IsTerminal() bool {
	return s == DaemonStateStopped
}

// CanTransitionTo returns true if transitioning to the target state is valid.
func (s DaemonState) CanTransitionTo(target DaemonState) bool {
	switch s {
	case DaemonStateStarting:
		return target == DaemonStateRunning || target == DaemonStateStopping || target == DaemonStateStopped
	case DaemonStateRunning:
		return target == DaemonStateStopping
	case DaemonStateStopping:
		return target == DaemonStateStopped
	case DaemonStateStopped:
		return target == DaemonStateStarting
	default:
		return false
	}
}

// ErrTimeout is returned by Run when the instances did not finish within
// the shutdown timeout.
var ErrTimeout = errors.New("shutdown timed out")

// DaemonConfig holds the configuration values for the daemon.
type DaemonConfig struct {
	HTTPEnabled bool
	HTTPPort    int
	HTTPBind    string

	// ShutdownTimeout bounds the join of cancelled instances.
	ShutdownTimeout time.Duration

	// PIDFile is claimed for the duration of Run when non-empty.
	PIDFile string

	SystemdNotify bool

	MetricsInterval time.Duration
}

// FromConfig maps the process settings onto a DaemonConfig.
func FromConfig(cfg *config.Config) DaemonConfig {
	return DaemonConfig{
		HTTPEnabled:     cfg.HTTP.Enabled,
		HTTPPort:        cfg.HTTP.Port,
		HTTPBind:        cfg.HTTP.Bind,
		ShutdownTimeout: cfg.ShutdownDuration(),
		PIDFile:         cfg.PIDFile,
		SystemdNotify:   cfg.SystemdNotify,
		MetricsInterval: cfg.CollectionDuration(),
	}
}

// DefaultDaemonConfig returns the daemon configuration of the default settings.
func DefaultDaemonConfig() DaemonConfig {
	cfg := config.NewDefaultConfig()
	return FromConfig(&cfg)
}

// Option configures a Daemon.
type Option func(*Daemon)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Daemon) {
		d.logger = l
	}
}

// WithNotifier replaces the supervisor notifier. It is only used when
// SystemdNotify is set.
func WithNotifier(n Notifier) Option {
	return func(d *Daemon) {
		d.notifier = n
	}
}

// WithLaunchFunc replaces rt.LaunchAll as the way Run starts instances.
func WithLaunchFunc(fn func(*engine.Runtime) error) Option {
	return func(d *Daemon) {
		d.launch = fn
	}
}

// Daemon runs the instances of a loaded runtime until they finish or the
// context is cancelled. It is safe for concurrent use.
type Daemon struct {
	mu        sync.RWMutex
	config    DaemonConfig
	state     DaemonState
	startedAt time.Time
	rt        *engine.Runtime
	server    *Server
	collector *metrics.Collector
	pidFile   *PIDFile
	notifier  Notifier
	launch    func(*engine.Runtime) error
	logger    *slog.Logger
}

// NewDaemon creates a daemon around rt, which should already hold its
// loaded instances.
func NewDaemon(rt *engine.Runtime, cfg DaemonConfig, opts ...Option) *Daemon {
	if cfg.MetricsInterval <= 0 {
		cfg.MetricsInterval = time.Duration(config.DefaultMetricsInterval) * time.Second
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = time.Duration(config.DefaultShutdownTimeout) * time.Second
	}
	d := &Daemon{
		config:    cfg,
		state:     DaemonStateStopped,
		rt:        rt,
		collector: metrics.NewCollector(cfg.MetricsInterval),
		notifier:  SystemdNotifier{},
		launch:    (*engine.Runtime).LaunchAll,
		logger:    rt.Logger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if !cfg.SystemdNotify {
		d.notifier = nopNotifier{}
	}
	if cfg.PIDFile != "" {
		d.pidFile = NewPIDFile(cfg.PIDFile)
	}

	d.server = NewServer(rt, d.Health, ServerConfig{Port: cfg.HTTPPort, Bind: cfg.HTTPBind})
	d.server.SetMetricsHandler(metrics.Handler())
	d.collector.Register("instances", metrics.NewStateProvider(rt))

	return d
}

// State returns the current daemon state.
func (d *Daemon) State() DaemonState {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state
}

func (d *Daemon) setState(state DaemonState) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.state.CanTransitionTo(state) {
		d.logger.Warn("unexpected daemon state transition", "from", d.state, "to", state)
	}
	d.state = state
	if state == DaemonStateStarting {
		d.startedAt = time.Now()
	}
}

// Health returns the current aggregate health status.
func (d *Daemon) Health() HealthStatus {
	d.mu.RLock()
	state, started := d.state, d.startedAt
	d.mu.RUnlock()
	return healthOf(d.rt, state, started)
}

// Server returns the introspection server.
func (d *Daemon) Server() *Server {
	return d.server
}

// Addr returns the address the introspection server listens on, or nil.
func (d *Daemon) Addr() net.Addr {
	return d.server.Addr()
}

// Run launches every enabled instance, or those the launch function picks,
// and blocks until all of them finished
// or ctx is cancelled, then shuts down. It returns the joined lifecycle
// failures, ErrTimeout when the join exceeded the shutdown timeout, or a
// start-up error.
func (d *Daemon) Run(ctx context.Context) error {
	d.setState(DaemonStateStarting)

	if d.pidFile != nil {
		if err := d.pidFile.CheckAndClaim(); err != nil {
			d.setState(DaemonStateStopped)
			return fmt.Errorf("failed to claim PID file; %w", err)
		}
		defer func() {
			if err := d.pidFile.Remove(); err != nil {
				d.logger.Warn("failed to remove PID file", "error", err)
			}
		}()
	}

	collectCtx, stopCollect := context.WithCancel(context.Background())
	defer stopCollect()
	if err := d.collector.Start(collectCtx, version.Get().Version, d.rt.RunID()); err != nil {
		d.logger.Warn("failed to start metrics collector", "error", err)
	}

	serverErr := make(chan error, 1)
	if d.config.HTTPEnabled {
		go func() {
			serverErr <- d.server.Start(ctx)
		}()
	}

	if err := d.launch(d.rt); err != nil {
		d.logger.Warn("some instances failed to launch", "error", err)
	}
	launched := d.launched()

	d.setState(DaemonStateRunning)
	d.notify(sddaemon.SdNotifyReady, statusMessage("%d instances launched", len(launched)))
	d.logger.Info("daemon running", "instances", len(launched), "run_id", d.rt.RunID())

	select {
	case <-ctx.Done():
		d.logger.Info("shutdown requested")
	case <-allDone(launched):
		d.logger.Info("all instances completed")
	case err := <-serverErr:
		if err != nil {
			d.logger.Error("http server error", "error", err)
		}
	}

	return d.stop()
}

// launched returns the instances the launch function started.
func (d *Daemon) launched() []*engine.Instance {
	var out []*engine.Instance
	for _, inst := range d.rt.Instances().Snapshot() {
		if inst.Launched() {
			out = append(out, inst)
		}
	}
	return out
}

// allDone closes the returned channel once every instance's lifecycle returned.
func allDone(insts []*engine.Instance) <-chan struct{} {
	ch := make(chan struct{})
	go func() {
		defer close(ch)
		for _, inst := range insts {
			if done := inst.Done(); done != nil {
				<-done
			}
		}
	}()
	return ch
}

func (d *Daemon) stop() error {
	d.setState(DaemonStateStopping)
	d.notify(sddaemon.SdNotifyStopping, statusMessage("stopping"))

	d.rt.CancelAll()

	joinCtx, cancel := context.WithTimeout(context.Background(), d.config.ShutdownTimeout)
	defer cancel()

	err := d.rt.JoinAll(joinCtx)
	if joinCtx.Err() != nil {
		err = fmt.Errorf("after %s; %w", d.config.ShutdownTimeout, ErrTimeout)
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), d.config.ShutdownTimeout)
	defer cancelShutdown()
	if serr := d.server.Shutdown(shutdownCtx); serr != nil {
		d.logger.Error("failed to shutdown http server", "error", serr)
	}
	if cerr := d.collector.Stop(shutdownCtx); cerr != nil {
		d.logger.Warn("failed to stop metrics collector", "error", cerr)
	}

	d.setState(DaemonStateStopped)
	d.logger.Info("daemon stopped")
	return err
}

func (d *Daemon) notify(states ...string) {
	for _, s := range states {
		if err := d.notifier.Notify(s); err != nil {
			d.logger.Warn("supervisor notification failed", "state", s, "error", err)
		}
	}
}
