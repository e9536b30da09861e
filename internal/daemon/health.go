package daemon

import (
	"time"

	"github.com/leefowlercu/compage/component"
	"github.com/leefowlercu/compage/engine"
)

// HealthStatus is the response format of the /readyz endpoint.
type HealthStatus struct {
	// Status is "healthy", "degraded" once any instance completed with
	// failure, or "stopped".
	Status string `json:"status"`

	// Ready is true while the daemon is running, degraded or not.
	Ready bool `json:"ready"`

	Uptime time.Duration `json:"uptime"`

	RunID string `json:"run_id"`

	// States counts instances per lifecycle state name.
	States map[string]int `json:"states"`

	// Failed lists the SIDs of instances that completed with failure.
	Failed []string `json:"failed,omitempty"`
}

// healthOf derives the aggregate health of rt's instances.
func healthOf(rt *engine.Runtime, state DaemonState, started time.Time) HealthStatus {
	status := HealthStatus{
		Status: "healthy",
		Ready:  state == DaemonStateRunning || state == DaemonStateDegraded,
		RunID:  rt.RunID(),
		States: make(map[string]int),
	}
	if !started.IsZero() {
		status.Uptime = time.Since(started)
	}

	for _, inst := range rt.Instances().Snapshot() {
		s := inst.State()
		status.States[s.String()]++
		if s == component.StateCompletedFailure {
			status.Failed = append(status.Failed, inst.SID())
		}
	}

	switch {
	case state == DaemonStateStopped || state == DaemonStateStopping:
		status.Status = "stopped"
	case len(status.Failed) > 0:
		status.Status = "degraded"
	}
	return status
}
