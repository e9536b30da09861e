package daemon

import (
	"fmt"

	sddaemon "github.com/coreos/go-systemd/v22/daemon"
)

// Notifier reports service state to a supervisor.
type Notifier interface {
	Notify(state string) error
}

// SystemdNotifier sends sd_notify messages over $NOTIFY_SOCKET. Outside of a
// systemd unit it is a no-op.
type SystemdNotifier struct{}

// Notify sends state, e.g. sddaemon.SdNotifyReady.
func (SystemdNotifier) Notify(state string) error {
	if _, err := sddaemon.SdNotify(false, state); err != nil {
		return fmt.Errorf("failed to notify systemd; %w", err)
	}
	return nil
}

type nopNotifier struct{}

func (nopNotifier) Notify(string) error { return nil }

// statusMessage formats a STATUS= line for the supervisor.
func statusMessage(format string, args ...any) string {
	return "STATUS=" + fmt.Sprintf(format, args...)
}
