package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/leefowlercu/compage/component"
)

// Recorder forwards engine lifecycle events to the package metrics.
type Recorder struct{}

// NewRecorder creates a Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Transition records a state change.
func (r *Recorder) Transition(h component.Handle, state component.State) {
	RecordTransition(h.Name(), state.String())
}

// Launched records a launch.
func (r *Recorder) Launched(h component.Handle) {
	RecordLaunch(h.Name())
}

// Completed records the terminal result of an instance.
func (r *Recorder) Completed(h component.Handle, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	RecordCompletion(h.Name(), result)
}

// HandlerDone records one handler invocation.
func (r *Recorder) HandlerDone(h component.Handle, handler string, d time.Duration, err error) {
	if errors.Is(err, component.ErrLoopExit) {
		err = nil
	}
	RecordHandler(h.Name(), handler, d, err)
}

// ConfigWarning records an ignored configuration entry.
func (r *Recorder) ConfigWarning(reason string) {
	RecordConfigWarning(reason)
}

// StateSource reports instance counts per lifecycle state.
type StateSource interface {
	StateCounts() map[component.State]int
}

// StateProvider samples a StateSource for the collector.
type StateProvider struct {
	src StateSource
}

// NewStateProvider creates a provider over src.
func NewStateProvider(src StateSource) *StateProvider {
	return &StateProvider{src: src}
}

// CollectMetrics implements MetricsProvider.
func (p *StateProvider) CollectMetrics(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	counts := p.src.StateCounts()
	byName := make(map[string]int, len(counts))
	total := 0
	for state, n := range counts {
		byName[state.String()] = n
		total += n
	}
	UpdateInstanceStates(byName)
	UpdateLoaded(total)
	return nil
}
