package depend

import (
	"errors"
	"log"
	"os"
	"testing"
	"time"

	"github.com/cleitonmarx/nowapi/internal/introspection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Clock interface {
	Now() time.Time
}

type fixedClock struct{ at time.Time }

func (c fixedClock) Now() time.Time { return c.at }

var epoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestResolve(t *testing.T) {
	Clear()

	Register("UTC")
	Register(8080)
	Register[Clock](fixedClock{at: epoch})

	tests := map[string]struct {
		resolveFunc   func() (any, error)
		expectedValue any
		expectedErr   error
	}{
		"string": {
			resolveFunc:   func() (any, error) { return Resolve[string]() },
			expectedValue: "UTC",
		},
		"int": {
			resolveFunc:   func() (any, error) { return Resolve[int]() },
			expectedValue: 8080,
		},
		"interface": {
			resolveFunc: func() (any, error) {
				c, err := Resolve[Clock]()
				if err != nil {
					return nil, err
				}
				return c.Now(), nil
			},
			expectedValue: epoch,
		},
		"not-registered": {
			resolveFunc: func() (any, error) {
				_, err := Resolve[*log.Logger]()
				return nil, err
			},
			expectedErr: errors.New("depend: the dependency type '*log.Logger' was not registered"),
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := tt.resolveFunc()
			require.Equal(t, tt.expectedErr, err)
			assert.Equal(t, tt.expectedValue, got)
		})
	}
}

func TestRegister_Replaces(t *testing.T) {
	Clear()

	Register("UTC")
	Register("Europe/Madrid")

	got, err := Resolve[string]()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Madrid", got)
}

func TestRegisterOnce(t *testing.T) {
	Clear()

	require.NoError(t, RegisterOnce[Clock](fixedClock{at: epoch}))
	err := RegisterOnce[Clock](fixedClock{})
	assert.EqualError(t, err, "depend: dependency already registered for type depend.Clock")

	c, err := Resolve[Clock]()
	require.NoError(t, err)
	assert.Equal(t, epoch, c.Now())
}

type component struct {
	Logger *log.Logger `resolve:""`
	Clock  Clock       `resolve:""`
	Name   string
}

type brokenComponent struct {
	logger *log.Logger `resolve:""`
}

func TestResolveStruct(t *testing.T) {
	logger := log.New(os.Stdout, "", 0)

	tests := map[string]struct {
		setup   func()
		target  func() any
		check   func(t *testing.T, target any)
		wantErr string
	}{
		"all-fields": {
			setup: func() {
				Register(logger)
				Register[Clock](fixedClock{at: epoch})
			},
			target: func() any { return &component{Name: "kept"} },
			check: func(t *testing.T, target any) {
				c := target.(*component)
				assert.Same(t, logger, c.Logger)
				assert.Equal(t, epoch, c.Clock.Now())
				assert.Equal(t, "kept", c.Name)
			},
		},
		"missing-dependency": {
			setup:   func() { Register(logger) },
			target:  func() any { return &component{} },
			wantErr: "depend: the dependency type 'depend.Clock' was not registered",
		},
		"unexported-field": {
			setup:   func() { Register(logger) },
			target:  func() any { return &brokenComponent{} },
			wantErr: "depend: field 'logger' is not settable",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			Clear()
			tt.setup()

			var err error
			switch target := tt.target().(type) {
			case *component:
				err = ResolveStruct(target)
				if tt.check != nil {
					tt.check(t, target)
				}
			case *brokenComponent:
				err = ResolveStruct(target)
			}

			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestEvents(t *testing.T) {
	Clear()

	Register[Clock](fixedClock{at: epoch})
	_, err := Resolve[Clock]()
	require.NoError(t, err)
	require.NoError(t, ResolveStruct(&struct {
		Clock Clock `resolve:""`
	}{}))

	got := Events()
	require.Len(t, got, 3)

	assert.Equal(t, introspection.DepRegistered, got[0].Kind)
	assert.Equal(t, "depend.Clock", got[0].Type)
	assert.Equal(t, "depend.fixedClock", got[0].Impl)
	assert.Equal(t, "depend.TestEvents", got[0].Caller.Func)
	assert.Equal(t, 1, got[0].Order)

	assert.Equal(t, introspection.DepResolved, got[1].Kind)
	assert.Equal(t, "depend.TestEvents", got[1].Caller.Func)

	assert.Equal(t, introspection.DepResolved, got[2].Kind)
	assert.Equal(t, 3, got[2].Order)

	got[0].Type = "changed"
	assert.Equal(t, "depend.Clock", Events()[0].Type)

	Clear()
	assert.Empty(t, Events())
}
