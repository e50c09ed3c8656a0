// Package lifecycle runs an application made of initializers and long-lived
// runnables: it wires configuration and dependencies into each component,
// starts the runnables concurrently, reports readiness and shuts everything
// down in order when the context ends or a component fails.
package lifecycle

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"reflect"
	"sync"
	"syscall"

	"github.com/cleitonmarx/nowapi/internal/config"
	"github.com/cleitonmarx/nowapi/internal/depend"
	"github.com/cleitonmarx/nowapi/internal/introspection"
	"github.com/cleitonmarx/nowapi/internal/reflectx"
	"golang.org/x/sync/errgroup"
)

// hosted keeps the user's runnable next to the value actually executed,
// which may be a readiness-tracking wrapper.
type hosted struct {
	original Runnable
	executor Runnable
	ready    ReadyChecker
}

// App is built with the fluent Initialize / Host / Introspect methods and started with Run.
type App struct {
	initializers  []Initializer
	hosted        []hosted
	introspectors []Introspector

	stopOnce sync.Once
	stopped  chan struct{}
	runErr   error
}

// NewApp returns an empty application.
func NewApp() *App {
	return &App{stopped: make(chan struct{})}
}

// Initialize appends initializers; they run sequentially in the order given.
func (a *App) Initialize(initializers ...Initializer) *App {
	a.initializers = append(a.initializers, initializers...)
	return a
}

// Host appends runnables; they run concurrently once every initializer succeeded.
func (a *App) Host(runnables ...Runnable) *App {
	for _, r := range runnables {
		h := hosted{original: r, executor: r}
		if rc, ok := r.(ReadyChecker); ok {
			h.ready = rc
		} else {
			tracker := &startedTracker{runnable: r}
			h.executor = tracker
			h.ready = tracker
		}
		a.hosted = append(a.hosted, h)
	}
	return a
}

// Introspect registers an introspector, called after initialization and before runnables start.
func (a *App) Introspect(i Introspector) *App {
	if i != nil {
		a.introspectors = append(a.introspectors, i)
	}
	return a
}

// Run blocks until SIGINT or SIGTERM is received or a runnable fails.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunWithContext(ctx)
}

// RunWithContext blocks until ctx is cancelled or a runnable fails.
func (a *App) RunWithContext(ctx context.Context) error {
	err := a.run(ctx)
	a.stopOnce.Do(func() {
		a.runErr = err
		close(a.stopped)
	})
	return err
}

// RunAsync starts the app in the background. The returned channel yields the
// final error, or nil, and is then closed.
func (a *App) RunAsync(ctx context.Context) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- a.RunWithContext(ctx)
		close(errCh)
	}()
	return errCh
}

func (a *App) run(ctx context.Context) error {
	var closers []func()
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	for _, init := range a.initializers {
		if err := wire(ctx, init); err != nil {
			return err
		}
		newCtx, err := initializeSafe(ctx, init)
		if err != nil {
			return err
		}
		if newCtx != nil {
			ctx = newCtx
		}
		if c, ok := init.(Closer); ok {
			closers = append(closers, c.Close)
		}
	}

	for _, h := range a.hosted {
		if err := wire(ctx, h.original); err != nil {
			return err
		}
		if c, ok := h.original.(Closer); ok {
			closers = append(closers, c.Close)
		}
	}

	if len(a.introspectors) > 0 {
		report := introspection.Report{
			Configs:      config.Accesses(),
			Deps:         depend.Events(),
			Runners:      a.runnerInfos(),
			Initializers: a.initializerInfos(),
		}
		for _, i := range a.introspectors {
			if err := wire(ctx, i); err != nil {
				return err
			}
			if err := introspectSafe(ctx, i, report); err != nil {
				return err
			}
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, h := range a.hosted {
		g.Go(func() error {
			return runSafe(gctx, h)
		})
	}
	return g.Wait()
}

func (a *App) runnerInfos() []introspection.ComponentInfo {
	out := make([]introspection.ComponentInfo, 0, len(a.hosted))
	for _, h := range a.hosted {
		out = append(out, componentInfo(h.original))
	}
	return out
}

func (a *App) initializerInfos() []introspection.ComponentInfo {
	out := make([]introspection.ComponentInfo, 0, len(a.initializers))
	for _, init := range a.initializers {
		out = append(out, componentInfo(init))
	}
	return out
}

func componentInfo(component any) introspection.ComponentInfo {
	t := reflect.TypeOf(component)
	return introspection.ComponentInfo{Type: reflectx.TypeName(t), Component: t}
}

func initializeSafe(ctx context.Context, init Initializer) (newCtx context.Context, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewError(fmt.Errorf("panic in Initialize func: %v", r), init)
		}
	}()
	newCtx, err = init.Initialize(ctx)
	if err != nil {
		err = newMethodError(err, init, "Initialize")
	}
	return newCtx, err
}

func runSafe(ctx context.Context, h hosted) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewError(fmt.Errorf("panic in Run func: %v", r), h.original)
		}
	}()
	if err = h.executor.Run(ctx); err != nil {
		err = newMethodError(err, h.original, "Run")
	}
	return err
}

func introspectSafe(ctx context.Context, i Introspector, r introspection.Report) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = NewError(fmt.Errorf("panic in Introspect func: %v", rec), i)
		}
	}()
	if err = i.Introspect(ctx, r); err != nil {
		err = NewError(err, i)
	}
	return err
}

// wire injects `resolve` tagged dependencies and `config` tagged values into
// target. Components that are not struct pointers have nothing to wire.
func wire(ctx context.Context, target any) error {
	if !reflectx.IsStructPointer(reflect.ValueOf(target)) {
		return nil
	}
	if err := reflectx.VisitFields(target, depend.ResolveField, config.LoadField(ctx)); err != nil {
		return NewError(err, target)
	}
	return nil
}
