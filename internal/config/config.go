// Package config loads typed configuration values from pluggable providers.
//
// Components declare what they need with struct tags:
//
//	type NowServer struct {
//		Port      int    `config:"HTTP_PORT" default:"8080"`
//		DefaultTZ string `config:"DEFAULT_TZ" default:"UTC"`
//	}
//
// A field without a default is required. Values are read through a single
// global provider, installed once during startup, which also records every
// access for the startup report.
package config

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cleitonmarx/nowapi/internal/introspection"
	"github.com/cleitonmarx/nowapi/internal/reflectx"
)

const (
	tagName        = "config"
	defaultTagName = "default"
)

// Provider looks configuration values up by key.
type Provider interface {
	Get(ctx context.Context, name string) (string, error)
}

// ParseFunc converts a raw configuration string into T.
type ParseFunc[T any] func(value string) (T, error)

var (
	globalMu       sync.RWMutex
	globalProvider *inspector
	parsersMu      sync.RWMutex
	parsers        map[reflect.Type]func(string) (any, error)
)

// SetGlobalProvider replaces the provider used by every lookup.
func SetGlobalProvider(p Provider) {
	globalMu.Lock()
	globalProvider = newInspector(p)
	globalMu.Unlock()
}

// ResetGlobalProvider goes back to plain environment variables and forgets recorded accesses.
func ResetGlobalProvider() {
	SetGlobalProvider(NewEnvVarProvider())
}

func current() *inspector {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalProvider
}

// RegisterParser adds or replaces the parser for T.
func RegisterParser[T any](parse ParseFunc[T]) {
	parsersMu.Lock()
	defer parsersMu.Unlock()
	parsers[reflect.TypeFor[T]()] = func(value string) (any, error) {
		return parse(value)
	}
}

func parserFor(t reflect.Type) (func(string) (any, error), bool) {
	parsersMu.RLock()
	defer parsersMu.RUnlock()
	p, ok := parsers[t]
	return p, ok
}

// Get returns the value of name parsed as T.
func Get[T any](ctx context.Context, name string) (T, error) {
	var zero T
	typeOfT := reflect.TypeFor[T]()
	parse, ok := parserFor(typeOfT)
	if !ok {
		return zero, fmt.Errorf("config: parser for type '%s' does not exist", reflectx.TypeName(typeOfT))
	}
	raw, err := current().get(ctx, name, false, nil, 2)
	if err != nil {
		return zero, fmt.Errorf("config: %s", err)
	}
	value, err := parse(raw)
	if err != nil {
		return zero, fmt.Errorf("config: error parsing value for key '%s': %s", name, err)
	}
	return value.(T), nil
}

// GetWithDefault returns the value of name, or defaultValue when it is missing or unparsable.
func GetWithDefault[T any](ctx context.Context, name string, defaultValue T) T {
	parse, ok := parserFor(reflect.TypeFor[T]())
	if !ok {
		return defaultValue
	}
	raw, err := current().get(ctx, name, true, nil, 2)
	if err != nil {
		return defaultValue
	}
	value, err := parse(raw)
	if err != nil {
		return defaultValue
	}
	return value.(T)
}

// LoadStruct fills every `config` tagged field of target.
func LoadStruct[T any](ctx context.Context, target *T) error {
	return reflectx.VisitFields(target, LoadField(ctx))
}

// LoadField returns the field visitor used by LoadStruct and by the lifecycle wiring.
func LoadField(ctx context.Context) reflectx.FieldFunc {
	return func(field reflect.Value, structField reflect.StructField, owner reflect.Type) error {
		key, ok := structField.Tag.Lookup(tagName)
		if !ok {
			return nil
		}
		parse, ok := parserFor(structField.Type)
		if !ok {
			return fmt.Errorf("config: parser for type '%s' does not exist", reflectx.TypeName(structField.Type))
		}

		defaultValue := structField.Tag.Get(defaultTagName)
		hasDefault := defaultValue != ""
		raw, err := current().get(ctx, key, hasDefault, owner, 3)
		switch {
		case err != nil && hasDefault:
			raw = defaultValue
		case err != nil:
			return fmt.Errorf("config: error getting value for field '%s': %s", structField.Name, err)
		}

		value, err := parse(raw)
		if err != nil {
			return fmt.Errorf("config: error parsing value for field '%s': %s", structField.Name, err)
		}
		if err := reflectx.SetField(field, structField, value); err != nil {
			return fmt.Errorf("config: %s", err)
		}
		return nil
	}
}

// Accesses lists every key read so far, sorted by key and then call site.
func Accesses() []introspection.ConfigAccess {
	return current().accesses()
}

// ParseList splits a comma separated value, dropping blanks.
func ParseList(value string) ([]string, error) {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out, nil
}

func init() {
	parsers = map[reflect.Type]func(string) (any, error){
		reflect.TypeFor[string]():        func(v string) (any, error) { return v, nil },
		reflect.TypeFor[bool]():          func(v string) (any, error) { return strconv.ParseBool(v) },
		reflect.TypeFor[int]():           func(v string) (any, error) { return strconv.Atoi(v) },
		reflect.TypeFor[int64]():         func(v string) (any, error) { return strconv.ParseInt(v, 10, 64) },
		reflect.TypeFor[float64]():       func(v string) (any, error) { return strconv.ParseFloat(v, 64) },
		reflect.TypeFor[time.Duration](): func(v string) (any, error) { return time.ParseDuration(v) },
		reflect.TypeFor[[]string]():      func(v string) (any, error) { return ParseList(v) },
	}
	globalProvider = newInspector(NewEnvVarProvider())
}
