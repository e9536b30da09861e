package components

import (
	"context"
	"errors"

	"github.com/leefowlercu/compage/component"
)

// GreeterName is the identity of the greeter component.
const GreeterName = "greeter"

// Greeter logs one greeting Times times during init and has no loop.
type Greeter struct {
	Greeting string
	Target   *string
	Times    uint8
}

var errNoTarget = errors.New("greeter has no target")

func registerGreeter(r *component.Registry) {
	target := "world"
	component.RegisterIn(r, GreeterName, component.Definition[Greeter]{
		Defaults: &Greeter{Greeting: "hello", Target: &target, Times: 1},
		Init:     greeterInit,
		Config:   []string{"Greeting", "Target", "Times"},
	})
}

// An absent Target fails the instance.
func greeterInit(_ context.Context, h component.Handle, p *Greeter) error {
	if p.Target == nil {
		return errNoTarget
	}
	log := logger(h)
	for i := range int(p.Times) {
		log.Info(p.Greeting+", "+*p.Target, "n", i+1)
	}
	return nil
}
