// Package cmdutil holds helpers shared by the CLI commands.
package cmdutil

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/leefowlercu/compage/component"
	"github.com/leefowlercu/compage/engine"
	"github.com/leefowlercu/compage/internal/config"
	"github.com/leefowlercu/compage/internal/daemon"
	"github.com/leefowlercu/compage/internal/ini"
	"github.com/leefowlercu/compage/internal/metrics"
)

// NewRuntime checks reg and returns a runtime that logs through logger and
// records lifecycle metrics.
func NewRuntime(reg *component.Registry, logger *slog.Logger) (*engine.Runtime, error) {
	if err := reg.Validate(); err != nil {
		return nil, fmt.Errorf("component registry check failed; %w", err)
	}

	return engine.New(reg,
		engine.WithLogger(logger),
		engine.WithObserver(metrics.NewRecorder()),
		engine.WithShutdownTimeout(config.Get().ShutdownDuration()),
	), nil
}

// LoadFile loads the ini file at path into rt. Malformed lines and unknown
// sections are logged and skipped unless strict is set, in which case they
// fail the load. Read failures always fail.
func LoadFile(rt *engine.Runtime, path string, strict bool) error {
	resolved, err := ResolvePath(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %q; %w", path, err)
	}

	err = rt.LoadFile(resolved)
	if err == nil {
		return nil
	}

	var perr *ini.ParseError
	if strict || !errors.As(err, &perr) {
		return err
	}

	for _, bad := range perr.Lines {
		rt.Logger().Warn("configuration line skipped", "file", resolved, "line", bad.Line, "error", bad.Err)
	}
	return nil
}

// Host runs rt under the host daemon until its instances finish or the
// process receives SIGINT or SIGTERM.
func Host(ctx context.Context, rt *engine.Runtime, opts ...daemon.Option) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	d := daemon.NewDaemon(rt, daemon.FromConfig(config.Get()), opts...)
	return d.Run(ctx)
}
