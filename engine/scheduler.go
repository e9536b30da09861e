package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/leefowlercu/compage/component"
)

// Handler names used in logs and metrics.
const (
	handlerInit = "init"
	handlerLoop = "loop"
	handlerExit = "exit"
)

// LaunchAll starts every enabled instance that is not running yet. Failures
// are reported per instance and do not stop the batch.
func (rt *Runtime) LaunchAll() error {
	var errs []error
	for _, inst := range rt.instances.Snapshot() {
		if !inst.Enabled() || inst.Launched() {
			continue
		}
		if err := rt.launch(inst); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LaunchByName starts every instance of the component called name.
func (rt *Runtime) LaunchByName(name string) error {
	return rt.launchMatching(func(i *Instance) bool { return i.Name() == name }, "name", name)
}

// LaunchBySID starts every instance whose string id is sid.
func (rt *Runtime) LaunchBySID(sid string) error {
	return rt.launchMatching(func(i *Instance) bool { return i.SID() == sid }, "sid", sid)
}

// LaunchByID starts the instance with numeric id id.
func (rt *Runtime) LaunchByID(id uint32) error {
	return rt.launchMatching(func(i *Instance) bool { return i.ID() == id }, "id", fmt.Sprint(id))
}

func (rt *Runtime) launchMatching(match func(*Instance) bool, key, value string) error {
	var (
		errs  []error
		found bool
	)
	for _, inst := range rt.instances.Snapshot() {
		if !match(inst) {
			continue
		}
		found = true
		if err := rt.launch(inst); err != nil {
			errs = append(errs, err)
		}
	}
	if !found {
		return fmt.Errorf("%s %q; %w", key, value, ErrNotFound)
	}
	return errors.Join(errs...)
}

func (rt *Runtime) launch(inst *Instance) error {
	if !inst.Enabled() {
		return fmt.Errorf("instance %s (%d); %w", inst.SID(), inst.ID(), ErrNotEnabled)
	}

	ctx, cancel := context.WithCancel(context.Background())
	if !inst.start(cancel) {
		cancel()
		return fmt.Errorf("instance %s (%d); %w", inst.SID(), inst.ID(), ErrAlreadyLaunched)
	}
	rt.started.Store(true)

	rt.observer.Launched(inst)
	rt.logger.Info("instance launched", "component", inst.Name(), "sid", inst.SID(), "id", inst.ID())

	go rt.run(ctx, inst)
	return nil
}

// run is the lifecycle goroutine of one instance.
func (rt *Runtime) run(ctx context.Context, inst *Instance) {
	err := rt.lifecycle(ctx, inst)

	if err != nil && errors.Is(err, component.ErrCancelled) {
		rt.cleanup(inst)
	}

	final := component.StateCompletedSuccess
	if err != nil {
		final = component.StateCompletedFailure
	}
	rt.transition(inst, final)
	rt.observer.Completed(inst, err)

	if err != nil {
		rt.logger.Warn("instance failed",
			"component", inst.Name(),
			"sid", inst.SID(),
			"id", inst.ID(),
			"error", err,
		)
	} else {
		rt.logger.Info("instance completed", "component", inst.Name(), "sid", inst.SID(), "id", inst.ID())
	}

	inst.finish(err)
}

// lifecycle drives inst through init, loop and exit. Cancellation is
// checked before every transition.
func (rt *Runtime) lifecycle(ctx context.Context, inst *Instance) error {
	d := inst.desc

	if d.Init != nil {
		if err := rt.enter(ctx, inst, component.StatePreInit); err != nil {
			return err
		}
		rt.callback(component.PhasePreInit, inst)
		if err := rt.enter(ctx, inst, component.StateInit); err != nil {
			return err
		}
		if err := rt.invoke(ctx, inst, handlerInit, d.Init); err != nil {
			return err
		}
		// A successful init holds resources, so POSTINIT is entered even when
		// a cancellation arrived during the handler; cleanup then runs exit.
		rt.transition(inst, component.StatePostInit)
		if ctx.Err() != nil {
			return component.ErrCancelled
		}
		rt.callback(component.PhasePostInit, inst)
	}

	if d.Loop != nil {
		for {
			if err := rt.enter(ctx, inst, component.StatePreLoop); err != nil {
				return err
			}
			rt.callback(component.PhasePreLoop, inst)
			if err := rt.enter(ctx, inst, component.StateLoop); err != nil {
				return err
			}
			err := rt.invoke(ctx, inst, handlerLoop, d.Loop)
			exitLoop := errors.Is(err, component.ErrLoopExit)
			if err != nil && !exitLoop {
				return err
			}
			if err := rt.enter(ctx, inst, component.StatePostLoop); err != nil {
				return err
			}
			rt.callback(component.PhasePostLoop, inst)
			if exitLoop {
				break
			}
		}
	}

	if d.Exit != nil {
		if err := rt.enter(ctx, inst, component.StatePreExit); err != nil {
			return err
		}
		rt.callback(component.PhasePreExit, inst)
		if err := rt.enter(ctx, inst, component.StateExit); err != nil {
			return err
		}
		if err := rt.invoke(ctx, inst, handlerExit, d.Exit); err != nil {
			return err
		}
		// Resources are released; a late cancellation no longer matters.
		rt.transition(inst, component.StatePostExit)
		rt.callback(component.PhasePostExit, inst)
	}

	return nil
}

// enter is the cancellation checkpoint in front of every transition.
func (rt *Runtime) enter(ctx context.Context, inst *Instance, s component.State) error {
	if ctx.Err() != nil {
		return component.ErrCancelled
	}
	rt.transition(inst, s)
	return nil
}

func (rt *Runtime) transition(inst *Instance, s component.State) {
	inst.setState(s)
	rt.observer.Transition(inst, s)
	rt.logger.Debug("state transition", "component", inst.Name(), "sid", inst.SID(), "id", inst.ID(), "state", s.String())
}

// invoke calls one handler. A handler error seen after cancellation is
// reported as a cancellation. A loop exit request passes through unchanged.
func (rt *Runtime) invoke(ctx context.Context, inst *Instance, name string, fn component.HandlerFunc) error {
	start := time.Now()
	err := fn(ctx, inst)
	rt.observer.HandlerDone(inst, name, time.Since(start), err)

	if err == nil || (name == handlerLoop && errors.Is(err, component.ErrLoopExit)) {
		return err
	}
	if ctx.Err() != nil {
		return fmt.Errorf("%s handler; %w; %w", name, component.ErrCancelled, err)
	}
	return fmt.Errorf("%s handler; %w", name, err)
}

// cleanup runs after a cancelled lifecycle. Between POSTINIT and PREEXIT the
// exit handler still releases resources; during INIT or EXIT the private
// data state is unknown and cleanup is skipped.
func (rt *Runtime) cleanup(inst *Instance) {
	state := inst.State()
	switch {
	case state == component.StateInit || state == component.StateExit:
		rt.logger.Warn("instance cancelled inside a handler; skipping cleanup",
			"component", inst.Name(),
			"sid", inst.SID(),
			"state", state.String(),
		)
	case state >= component.StatePostInit && state <= component.StatePreExit:
		if inst.desc.Exit == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), rt.shutdownTimeout)
		defer cancel()
		if err := rt.invoke(ctx, inst, handlerExit, inst.desc.Exit); err != nil {
			rt.logger.Warn("cleanup exit handler failed", "component", inst.Name(), "sid", inst.SID(), "error", err)
		}
	}
}

// KillByName cancels and joins the first launched instance of name.
func (rt *Runtime) KillByName(ctx context.Context, name string) error {
	return rt.kill(ctx, rt.instances.FindByName(name), "name", name)
}

// KillBySID cancels and joins the launched instance with string id sid.
func (rt *Runtime) KillBySID(ctx context.Context, sid string) error {
	return rt.kill(ctx, rt.instances.FindBySID(sid), "sid", sid)
}

// KillByID cancels and joins the launched instance with numeric id id.
func (rt *Runtime) KillByID(ctx context.Context, id uint32) error {
	return rt.kill(ctx, rt.instances.FindByID(id), "id", fmt.Sprint(id))
}

func (rt *Runtime) kill(ctx context.Context, inst *Instance, key, value string) error {
	if inst == nil {
		return fmt.Errorf("%s %q; %w", key, value, ErrNotFound)
	}
	if !inst.Enabled() {
		return fmt.Errorf("instance %s (%d); %w", inst.SID(), inst.ID(), ErrNotEnabled)
	}
	done := inst.stop()
	if done == nil {
		return fmt.Errorf("instance %s (%d); %w", inst.SID(), inst.ID(), ErrNotLaunched)
	}

	rt.logger.Info("killing instance", "component", inst.Name(), "sid", inst.SID(), "id", inst.ID())

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// KillAll interrupts the whole process. The signal handler installed with
// InstallSignalHandler performs the teardown.
func (rt *Runtime) KillAll() error {
	if err := syscall.Kill(os.Getpid(), syscall.SIGINT); err != nil {
		return fmt.Errorf("failed to signal process; %w; %w", component.ErrSystem, err)
	}
	return nil
}

// CancelAll requests cancellation of every launched instance without waiting.
func (rt *Runtime) CancelAll() {
	for _, inst := range rt.instances.Snapshot() {
		inst.requestCancel()
	}
}

// JoinAll waits for every launched, enabled instance in turn, then destroys
// it and removes it from the collection. It returns the joined lifecycle
// failures, or the ctx error when ctx ends first.
func (rt *Runtime) JoinAll(ctx context.Context) error {
	var errs []error
	for _, inst := range rt.instances.Snapshot() {
		if !inst.Enabled() || !inst.Launched() {
			continue
		}
		select {
		case <-inst.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
		if err := inst.Result(); err != nil {
			errs = append(errs, fmt.Errorf("instance %s (%d); %w", inst.SID(), inst.ID(), err))
		}
		rt.instances.Remove(inst)
		inst.destroy()
	}
	return errors.Join(errs...)
}

// InstallSignalHandler tears everything down on SIGINT or SIGTERM: it
// cancels and joins all instances, bounded by the shutdown timeout, and then
// calls the exit function with 0, or 1 when the timeout expired. The
// returned stop function uninstalls the handler.
func (rt *Runtime) InstallSignalHandler(ctx context.Context) (stop func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(ctx)
	go func() {
		select {
		case <-ctx.Done():
			return
		case sig := <-sigCh:
			rt.logger.Info("received signal; shutting down", "signal", sig.String())
			rt.exitFunc()(rt.Shutdown(context.Background()))
		}
	}()

	return func() {
		signal.Stop(sigCh)
		cancel()
	}
}

// Shutdown cancels and joins every instance, bounded by the shutdown
// timeout. It returns the process exit status: 0, or 1 on timeout.
func (rt *Runtime) Shutdown(ctx context.Context) int {
	rt.CancelAll()

	joinCtx, cancel := context.WithTimeout(ctx, rt.shutdownTimeout)
	defer cancel()

	if err := rt.JoinAll(joinCtx); err != nil && joinCtx.Err() != nil {
		rt.logger.Error("shutdown timed out", "timeout", rt.shutdownTimeout, "error", err)
		return component.ExitFailure
	}
	return component.ExitSuccess
}

func (rt *Runtime) exitFunc() func(int) {
	if rt.exit != nil {
		return rt.exit
	}
	return os.Exit
}
