package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/leefowlercu/compage/component"
)

// Instance is one live copy of a component: its private data plus the
// bookkeeping the scheduler needs to run it.
type Instance struct {
	id   uint32
	name string
	desc *component.Descriptor

	state atomic.Int32

	mu        sync.RWMutex
	sid       string
	enabled   bool
	pdata     any
	launched  bool
	cancel    context.CancelFunc
	done      chan struct{}
	err       error
	startedAt time.Time
	endedAt   time.Time
	destroyed bool
}

func newInstance(id uint32, desc *component.Descriptor) *Instance {
	inst := &Instance{
		id:      id,
		name:    desc.Name(),
		desc:    desc,
		sid:     desc.Name(),
		enabled: true,
		pdata:   desc.NewPData(),
	}
	inst.state.Store(int32(component.StateIdle))
	return inst
}

// Name returns the component identity.
func (i *Instance) Name() string {
	return i.name
}

// SID returns the string id, the component name unless overridden.
func (i *Instance) SID() string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.sid
}

// ID returns the numeric id.
func (i *Instance) ID() uint32 {
	return i.id
}

// State returns the current lifecycle state.
func (i *Instance) State() component.State {
	return component.State(i.state.Load())
}

// PData returns the pointer to the private data, or nil once destroyed.
func (i *Instance) PData() any {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.pdata
}

// Enabled reports whether the instance takes part in launches.
func (i *Instance) Enabled() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.enabled
}

// Launched reports whether a lifecycle goroutine was started and not yet killed.
func (i *Instance) Launched() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.launched
}

// Descriptor returns the resolved component descriptor.
func (i *Instance) Descriptor() *component.Descriptor {
	return i.desc
}

// Done is closed when the lifecycle goroutine has returned. It is nil before launch.
func (i *Instance) Done() <-chan struct{} {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.done
}

// Result returns the error the lifecycle ended with. It is only meaningful
// once Done is closed.
func (i *Instance) Result() error {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.err
}

// Wait blocks until the lifecycle goroutine returns or ctx is done.
func (i *Instance) Wait(ctx context.Context) error {
	done := i.Done()
	if done == nil {
		return ErrNotLaunched
	}
	select {
	case <-done:
		return i.Result()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Times returns when the lifecycle started and ended; zero values mean not yet.
func (i *Instance) Times() (started, ended time.Time) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.startedAt, i.endedAt
}

// FieldValues encodes the configurable fields of the private data in
// registration order.
func (i *Instance) FieldValues() []FieldValue {
	pdata := i.PData()
	out := make([]FieldValue, 0, len(i.desc.Fields))
	for _, f := range i.desc.Fields {
		fv := FieldValue{Name: f.Name, Kind: f.Kind.String()}
		if pdata != nil {
			fv.Value = f.Encode(pdata)
		}
		out = append(out, fv)
	}
	return out
}

// FieldValue is an encoded configurable field.
type FieldValue struct {
	Name  string `json:"name" yaml:"name" toml:"name"`
	Kind  string `json:"kind" yaml:"kind" toml:"kind"`
	Value string `json:"value" yaml:"value" toml:"value"`
}

func (i *Instance) setSID(sid string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.sid = sid
}

func (i *Instance) setEnabled(enabled bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.enabled = enabled
}

func (i *Instance) setState(s component.State) {
	i.state.Store(int32(s))
}

// start marks the instance launched. It fails when it already runs.
func (i *Instance) start(cancel context.CancelFunc) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.launched || i.running() {
		return false
	}
	i.launched = true
	i.cancel = cancel
	i.done = make(chan struct{})
	i.err = nil
	i.startedAt = time.Now()
	i.endedAt = time.Time{}
	return true
}

// running reports whether a lifecycle goroutine has not returned yet. A
// kill that stopped waiting leaves one behind. Callers hold i.mu.
func (i *Instance) running() bool {
	if i.done == nil {
		return false
	}
	select {
	case <-i.done:
		return false
	default:
		return true
	}
}

func (i *Instance) finish(err error) {
	i.mu.Lock()
	i.err = err
	i.endedAt = time.Now()
	done := i.done
	i.mu.Unlock()
	close(done)
}

// stop cancels the lifecycle context and clears the launched flag. It
// returns the done channel to join on, or nil when not launched.
func (i *Instance) stop() <-chan struct{} {
	i.mu.Lock()
	defer i.mu.Unlock()
	if !i.launched {
		return nil
	}
	if i.cancel != nil {
		i.cancel()
	}
	i.launched = false
	return i.done
}

func (i *Instance) requestCancel() {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if i.launched && i.cancel != nil {
		i.cancel()
	}
}

// destroy releases the private data and the sid override. State stays readable.
func (i *Instance) destroy() {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.cancel != nil {
		i.cancel()
		i.cancel = nil
	}
	i.pdata = nil
	i.sid = i.name
	i.launched = false
	i.destroyed = true
}

// Destroyed reports whether the instance was released.
func (i *Instance) Destroyed() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.destroyed
}
