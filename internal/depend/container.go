// Package depend is a small type-keyed dependency container.
// Initializers register values by type at startup; components receive them
// through struct fields tagged `resolve:""`.
package depend

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/cleitonmarx/nowapi/internal/introspection"
	"github.com/cleitonmarx/nowapi/internal/reflectx"
)

const tagName = "resolve"

var (
	containerMu sync.RWMutex
	container   = make(map[reflect.Type]any)
)

// Register stores dependency under type T, replacing any previous value.
func Register[T any](dependency T) {
	typeOfT := reflect.TypeFor[T]()
	containerMu.Lock()
	container[typeOfT] = dependency
	containerMu.Unlock()

	record(introspection.DepRegistered, typeOfT, dependency, nil, 2)
}

// RegisterOnce stores dependency under type T and fails if T is already registered.
func RegisterOnce[T any](dependency T) error {
	typeOfT := reflect.TypeFor[T]()
	containerMu.Lock()
	if _, exists := container[typeOfT]; exists {
		containerMu.Unlock()
		return fmt.Errorf("depend: dependency already registered for type %s", reflectx.TypeName(typeOfT))
	}
	container[typeOfT] = dependency
	containerMu.Unlock()

	record(introspection.DepRegistered, typeOfT, dependency, nil, 2)
	return nil
}

// Resolve returns the dependency registered under type T.
func Resolve[T any]() (T, error) {
	var zero T
	typeOfT := reflect.TypeFor[T]()
	containerMu.RLock()
	dependency, exists := container[typeOfT]
	containerMu.RUnlock()
	if !exists {
		return zero, fmt.Errorf("depend: the dependency type '%s' was not registered", reflectx.TypeName(typeOfT))
	}

	record(introspection.DepResolved, typeOfT, dependency, nil, 2)
	return dependency.(T), nil
}

// ResolveStruct fills every `resolve` tagged field of target.
func ResolveStruct[T any](target *T) error {
	return reflectx.VisitFields(target, ResolveField)
}

// ResolveField injects a single `resolve` tagged field; untagged fields are skipped.
// It matches reflectx.FieldFunc so wiring code can chain it with config loading.
func ResolveField(field reflect.Value, structField reflect.StructField, owner reflect.Type) error {
	if _, ok := structField.Tag.Lookup(tagName); !ok {
		return nil
	}

	containerMu.RLock()
	dependency, exists := container[field.Type()]
	containerMu.RUnlock()
	if !exists {
		return fmt.Errorf("depend: the dependency type '%s' was not registered", reflectx.TypeName(field.Type()))
	}
	if err := reflectx.SetField(field, structField, dependency); err != nil {
		return fmt.Errorf("depend: %s", err)
	}

	record(introspection.DepResolved, field.Type(), dependency, owner, 3)
	return nil
}

// Clear empties the container and its event log. Meant for tests.
func Clear() {
	containerMu.Lock()
	container = make(map[reflect.Type]any)
	containerMu.Unlock()

	eventsMu.Lock()
	events = nil
	order = 0
	eventsMu.Unlock()
}
