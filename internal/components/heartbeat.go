package components

import (
	"context"
	"time"

	"github.com/leefowlercu/compage/component"
)

// HeartbeatName is the identity of the heartbeat component.
const HeartbeatName = "heartbeat"

// Heartbeat logs a message every IntervalMs milliseconds. It stops after
// Count beats, or runs until cancelled when Count is 0.
type Heartbeat struct {
	IntervalMs uint32
	Count      int32
	Message    *string

	beats int32
}

func registerHeartbeat(r *component.Registry) {
	msg := "alive"
	component.RegisterIn(r, HeartbeatName, component.Definition[Heartbeat]{
		Defaults: &Heartbeat{IntervalMs: 1000, Count: 5, Message: &msg},
		Init:     heartbeatInit,
		Loop:     heartbeatLoop,
		Exit:     heartbeatExit,
		Config:   []string{"IntervalMs", "Count", "Message"},
	})
}

func heartbeatInit(_ context.Context, h component.Handle, p *Heartbeat) error {
	logger(h).Info("heartbeat starting", "interval_ms", p.IntervalMs, "count", p.Count)
	p.beats = 0
	return nil
}

func heartbeatLoop(ctx context.Context, h component.Handle, p *Heartbeat) error {
	timer := time.NewTimer(time.Duration(p.IntervalMs) * time.Millisecond)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}

	p.beats++
	msg := ""
	if p.Message != nil {
		msg = *p.Message
	}
	logger(h).Info(msg, "beat", p.beats)

	if p.Count > 0 && p.beats >= p.Count {
		return component.ErrLoopExit
	}
	return nil
}

func heartbeatExit(_ context.Context, h component.Handle, p *Heartbeat) error {
	logger(h).Info("heartbeat stopped", "beats", p.beats)
	return nil
}

// Beats returns how many beats p has logged.
func (p *Heartbeat) Beats() int32 {
	return p.beats
}
