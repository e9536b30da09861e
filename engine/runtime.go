// Package engine hosts component instances: it builds them from the
// registry or a configuration stream, runs each on its own goroutine through
// the lifecycle state machine, and coordinates cancellation and shutdown.
//
// A Runtime is created once by the host, loaded, launched, joined and closed:
//
//	rt := engine.New(component.Default, engine.WithLogger(logger))
//	defer rt.Close()
//	if err := rt.LoadFile("compage.ini"); err != nil { ... }
//	if err := rt.LaunchAll(); err != nil { ... }
//	err := rt.JoinAll(ctx)
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/leefowlercu/compage/component"
)

const defaultShutdownTimeout = 10 * time.Second

// Callback is a phase callback. It receives the argument given at
// registration and the handle of the instance crossing the phase.
type Callback func(arg any, h component.Handle)

type callbackSlot struct {
	fn  Callback
	arg any
}

// Observer receives lifecycle events. All methods must be safe for
// concurrent use; they are called from instance goroutines.
type Observer interface {
	Transition(h component.Handle, state component.State)
	Launched(h component.Handle)
	Completed(h component.Handle, err error)
	HandlerDone(h component.Handle, handler string, d time.Duration, err error)
	ConfigWarning(reason string)
}

type nopObserver struct{}

func (nopObserver) Transition(component.Handle, component.State)                {}
func (nopObserver) Launched(component.Handle)                                   {}
func (nopObserver) Completed(component.Handle, error)                           {}
func (nopObserver) HandlerDone(component.Handle, string, time.Duration, error) {}
func (nopObserver) ConfigWarning(string)                                        {}

// Runtime owns the instance collection, the phase callback table and the
// id counter of one run.
type Runtime struct {
	reg       *component.Registry
	instances *Collection
	callbacks [component.PhaseCount]callbackSlot
	nextID    atomic.Uint32
	runID     uuid.UUID
	started   atomic.Bool

	logger          *slog.Logger
	observer        Observer
	exit            func(int)
	shutdownTimeout time.Duration

	cbMu sync.RWMutex
	load loadState
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(rt *Runtime) {
		rt.logger = l
	}
}

// WithObserver sets the lifecycle event observer, typically a metrics recorder.
func WithObserver(o Observer) Option {
	return func(rt *Runtime) {
		if o != nil {
			rt.observer = o
		}
	}
}

// WithExitFunc replaces os.Exit in the signal handler.
func WithExitFunc(fn func(int)) Option {
	return func(rt *Runtime) {
		rt.exit = fn
	}
}

// WithShutdownTimeout bounds how long the signal handler waits for instances.
func WithShutdownTimeout(d time.Duration) Option {
	return func(rt *Runtime) {
		if d > 0 {
			rt.shutdownTimeout = d
		}
	}
}

// New creates a Runtime over reg. A nil reg uses component.Default.
func New(reg *component.Registry, opts ...Option) *Runtime {
	if reg == nil {
		reg = component.Default
	}
	rt := &Runtime{
		reg:             reg,
		instances:       NewCollection(),
		runID:           uuid.New(),
		logger:          slog.Default(),
		observer:        nopObserver{},
		shutdownTimeout: defaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(rt)
	}
	rt.logger = rt.logger.With("run_id", rt.runID.String())
	return rt
}

// Registry returns the registry instances are resolved against.
func (rt *Runtime) Registry() *component.Registry {
	return rt.reg
}

// RunID returns the unique id of this runtime.
func (rt *Runtime) RunID() string {
	return rt.runID.String()
}

// Instances returns the live instance collection.
func (rt *Runtime) Instances() *Collection {
	return rt.instances
}

// Logger returns the runtime logger.
func (rt *Runtime) Logger() *slog.Logger {
	return rt.logger
}

// SetCallback registers fn with arg for phase, or for every phase with
// component.PhaseAll. A nil fn clears the slot. Callbacks are fixed once the
// first instance has been launched.
func (rt *Runtime) SetCallback(phase component.Phase, fn Callback, arg any) error {
	if rt.started.Load() {
		return ErrRuntimeStarted
	}
	if phase != component.PhaseAll && (phase < 0 || phase >= component.PhaseCount) {
		return fmt.Errorf("phase %d; %w", phase, component.ErrInvalidArguments)
	}

	rt.cbMu.Lock()
	defer rt.cbMu.Unlock()

	slot := callbackSlot{fn: fn, arg: arg}
	if phase == component.PhaseAll {
		for p := range rt.callbacks {
			rt.callbacks[p] = slot
		}
		return nil
	}
	rt.callbacks[phase] = slot
	return nil
}

func (rt *Runtime) callback(phase component.Phase, inst *Instance) {
	rt.cbMu.RLock()
	slot := rt.callbacks[phase]
	rt.cbMu.RUnlock()
	if slot.fn != nil {
		slot.fn(slot.arg, inst)
	}
}

// StateByName returns the state of the first instance of the component
// called name, or StateIllegal.
func (rt *Runtime) StateByName(name string) component.State {
	return stateOf(rt.instances.FindByName(name))
}

// StateBySID returns the state of the instance with string id sid, or StateIllegal.
func (rt *Runtime) StateBySID(sid string) component.State {
	return stateOf(rt.instances.FindBySID(sid))
}

// StateByID returns the state of the instance with numeric id id, or StateIllegal.
func (rt *Runtime) StateByID(id uint32) component.State {
	return stateOf(rt.instances.FindByID(id))
}

func stateOf(inst *Instance) component.State {
	if inst == nil {
		return component.StateIllegal
	}
	return inst.State()
}

// StateCounts returns the number of instances per lifecycle state.
func (rt *Runtime) StateCounts() map[component.State]int {
	counts := make(map[component.State]int)
	for _, inst := range rt.instances.Snapshot() {
		counts[inst.State()]++
	}
	return counts
}

// WaitForState polls inst until it reaches at least state (or a terminal
// state) or ctx is done.
func (rt *Runtime) WaitForState(ctx context.Context, inst *Instance, state component.State) error {
	if inst == nil {
		return ErrNotFound
	}

	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()

	for {
		s := inst.State()
		if s >= state || s.IsTerminal() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Close cancels and joins every instance still in the collection, then
// destroys and removes it. Instances whose kill gave up waiting are joined
// here too, so private data is never released under a running handler.
func (rt *Runtime) Close() error {
	for _, inst := range rt.instances.Snapshot() {
		inst.stop()
		if done := inst.Done(); done != nil {
			<-done
		}
		rt.instances.Remove(inst)
		inst.destroy()
	}
	return nil
}

func (rt *Runtime) newInstance(desc *component.Descriptor) *Instance {
	return newInstance(rt.nextID.Add(1), desc)
}
