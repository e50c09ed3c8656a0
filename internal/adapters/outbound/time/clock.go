package time

import (
	"context"
	"time"

	"github.com/cleitonmarx/nowapi/internal/depend"
	"github.com/cleitonmarx/nowapi/internal/domain"
)

// SystemClock is an implementation of domain.CurrentTimeProvider backed by the system clock.
type SystemClock struct{}

// Now returns the current time in UTC.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// InitClock registers the SystemClock in the dependency container.
type InitClock struct{}

// Initialize registers the SystemClock as the domain.CurrentTimeProvider.
func (ic InitClock) Initialize(ctx context.Context) (context.Context, error) {
	depend.Register[domain.CurrentTimeProvider](SystemClock{})
	return ctx, nil
}
