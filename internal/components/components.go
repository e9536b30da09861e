// Package components holds the components compiled into the compage binary.
// Importing the package registers them with component.Default.
package components

import (
	"log/slog"

	"github.com/leefowlercu/compage/component"
)

func init() {
	Register(component.Default)
}

// Register deposits every bundled component into r.
func Register(r *component.Registry) {
	registerHeartbeat(r)
	registerGreeter(r)
	registerSampler(r)
}

// logger returns the process logger tagged with the instance identity.
func logger(h component.Handle) *slog.Logger {
	return slog.Default().With("component", h.Name(), "sid", h.SID(), "id", h.ID())
}
