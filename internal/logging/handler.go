package logging

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// SwappableHandler wraps a slog.Handler that can be atomically replaced at runtime.
// Handlers derived with WithAttrs or WithGroup follow later swaps of their root,
// so loggers created during bootstrap keep working after Upgrade.
type SwappableHandler struct {
	handler atomic.Pointer[slog.Handler]

	// parent and derive are set on derived handlers only.
	parent *SwappableHandler
	derive func(slog.Handler) slog.Handler
	cache  atomic.Pointer[derived]
}

type derived struct {
	from    *slog.Handler
	handler slog.Handler
}

// NewSwappableHandler creates a handler with an initial handler.
func NewSwappableHandler(initial slog.Handler) *SwappableHandler {
	sh := &SwappableHandler{}
	sh.handler.Store(&initial)
	return sh
}

// Swap atomically replaces the underlying handler of the root.
func (sh *SwappableHandler) Swap(newHandler slog.Handler) {
	root := sh
	for root.parent != nil {
		root = root.parent
	}
	root.handler.Store(&newHandler)
}

// current returns the handler records go to right now.
func (sh *SwappableHandler) current() slog.Handler {
	if sh.parent == nil {
		return *sh.handler.Load()
	}

	base := sh.parent.source()
	if c := sh.cache.Load(); c != nil && c.from == base {
		return c.handler
	}
	h := sh.derive(sh.parent.current())
	sh.cache.Store(&derived{from: base, handler: h})
	return h
}

// source returns the root handler pointer, which changes on every Swap.
func (sh *SwappableHandler) source() *slog.Handler {
	for sh.parent != nil {
		sh = sh.parent
	}
	return sh.handler.Load()
}

// Enabled reports whether the handler handles records at the given level.
func (sh *SwappableHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return sh.current().Enabled(ctx, level)
}

// Handle handles the Record.
func (sh *SwappableHandler) Handle(ctx context.Context, r slog.Record) error {
	return sh.current().Handle(ctx, r)
}

// WithAttrs returns a derived handler that adds attrs to whatever the root holds.
func (sh *SwappableHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &SwappableHandler{
		parent: sh,
		derive: func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) },
	}
}

// WithGroup returns a derived handler that opens group name on whatever the root holds.
func (sh *SwappableHandler) WithGroup(name string) slog.Handler {
	return &SwappableHandler{
		parent: sh,
		derive: func(h slog.Handler) slog.Handler { return h.WithGroup(name) },
	}
}
