package lifecycle

import (
	"context"

	"github.com/cleitonmarx/nowapi/internal/introspection"
)

// Initializer prepares resources before anything runs, typically registering
// them in the dependency container. The returned context replaces the app context.
type Initializer interface {
	Initialize(context.Context) (context.Context, error)
}

// Runnable is a long-lived process such as a server. Its context is cancelled
// on shutdown or as soon as another runnable fails.
type Runnable interface {
	Run(context.Context) error
}

// Closer releases resources on shutdown. Closers run in reverse registration order.
type Closer interface {
	Close()
}

// ReadyChecker reports whether a runnable can take traffic.
// Runnables that do not implement it are ready once Run has been entered.
type ReadyChecker interface {
	IsReady(context.Context) error
}

// Introspector receives the startup report after initialization.
type Introspector interface {
	Introspect(context.Context, introspection.Report) error
}
