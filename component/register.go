package component

import (
	"context"
	"fmt"
	"reflect"
)

// TypedHandler is a handler over private data of type T.
type TypedHandler[T any] func(ctx context.Context, h Handle, p *T) error

// Typed adapts a TypedHandler to a HandlerFunc. The adapter fails with
// ErrInvalidDescriptor when the instance's private data is not a *T.
func Typed[T any](fn TypedHandler[T]) HandlerFunc {
	return func(ctx context.Context, h Handle) error {
		p, ok := h.PData().(*T)
		if !ok {
			return fmt.Errorf("handler of %s expects %T, got %T; %w",
				h.Name(), (*T)(nil), h.PData(), ErrInvalidDescriptor)
		}
		return fn(ctx, h, p)
	}
}

// Definition bundles every record of a component for one-shot registration.
// Nil handlers are left unbound.
type Definition[T any] struct {
	Defaults *T
	Init     TypedHandler[T]
	Loop     TypedHandler[T]
	Exit     TypedHandler[T]
	Config   []string
}

// RegisterIn deposits all records of def into r under name.
func RegisterIn[T any](r *Registry, name string, def Definition[T]) {
	r.RegisterID(name)
	if def.Defaults != nil {
		r.RegisterPData(name, def.Defaults)
	} else {
		var zero T
		if reflect.TypeFor[T]().Kind() == reflect.Struct {
			r.RegisterPData(name, &zero)
		}
	}
	if def.Init != nil {
		InitIn(r, name, def.Init)
	}
	if def.Loop != nil {
		LoopIn(r, name, def.Loop)
	}
	if def.Exit != nil {
		ExitIn(r, name, def.Exit)
	}
	if len(def.Config) > 0 {
		ConfigIn[T](r, name, def.Config...)
	}
}

// InitIn deposits a typed init handler into r.
func InitIn[T any](r *Registry, name string, fn TypedHandler[T]) {
	r.addHandler(r.inits, name, Typed(fn), reflect.TypeFor[T]())
}

// LoopIn deposits a typed loop handler into r.
func LoopIn[T any](r *Registry, name string, fn TypedHandler[T]) {
	r.addHandler(r.loops, name, Typed(fn), reflect.TypeFor[T]())
}

// ExitIn deposits a typed exit handler into r.
func ExitIn[T any](r *Registry, name string, fn TypedHandler[T]) {
	r.addHandler(r.exits, name, Typed(fn), reflect.TypeFor[T]())
}

// ConfigIn marks members of T as configurable for name in r.
func ConfigIn[T any](r *Registry, name string, fields ...string) {
	var zero T
	r.AddConfig(name, &zero, fields...)
}

// Register deposits all records of def into the Default registry.
func Register[T any](name string, def Definition[T]) {
	RegisterIn(Default, name, def)
}

// RegisterID deposits an identity into the Default registry.
func RegisterID(name string) {
	Default.RegisterID(name)
}

// RegisterPData deposits default private data into the Default registry.
func RegisterPData[T any](name string, defaults *T) {
	Default.RegisterPData(name, defaults)
}

// RegisterInit deposits a typed init handler into the Default registry.
func RegisterInit[T any](name string, fn TypedHandler[T]) {
	InitIn(Default, name, fn)
}

// RegisterLoop deposits a typed loop handler into the Default registry.
func RegisterLoop[T any](name string, fn TypedHandler[T]) {
	LoopIn(Default, name, fn)
}

// RegisterExit deposits a typed exit handler into the Default registry.
func RegisterExit[T any](name string, fn TypedHandler[T]) {
	ExitIn(Default, name, fn)
}

// AddConfig marks members of T as configurable in the Default registry.
func AddConfig[T any](name string, fields ...string) {
	ConfigIn[T](Default, name, fields...)
}
