package engine

import "errors"

var (
	// ErrNotFound indicates no instance matches the requested name, sid or id.
	ErrNotFound = errors.New("instance not found")

	// ErrNotEnabled indicates the targeted instance is disabled.
	ErrNotEnabled = errors.New("instance not enabled")

	// ErrNotLaunched indicates the targeted instance is not running.
	ErrNotLaunched = errors.New("instance not launched")

	// ErrAlreadyLaunched indicates the targeted instance is already running.
	ErrAlreadyLaunched = errors.New("instance already launched")

	// ErrRuntimeStarted indicates a change that is only allowed before the first launch.
	ErrRuntimeStarted = errors.New("runtime already started")
)
