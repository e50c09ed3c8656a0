package config

import (
	"context"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/cleitonmarx/nowapi/internal/introspection"
	"github.com/cleitonmarx/nowapi/internal/reflectx"
)

// SourceProvider is implemented by providers that can tell which backend answered.
type SourceProvider interface {
	GetWithSource(ctx context.Context, name string) (value string, source string, err error)
}

type cached struct {
	value  string
	source string
}

// inspector wraps the active provider, caches successful lookups and records accesses.
type inspector struct {
	provider Provider
	name     string

	mu       sync.Mutex
	cache    map[string]cached
	accessed []introspection.ConfigAccess
}

func newInspector(p Provider) *inspector {
	return &inspector{
		provider: p,
		name:     reflectx.TypeNameOf(p),
		cache:    make(map[string]cached),
	}
}

// get resolves key; skip counts the frames between get and the call site worth reporting.
func (i *inspector) get(ctx context.Context, key string, hasDefault bool, owner reflect.Type, skip int) (string, error) {
	fn, file, line := reflectx.Caller(skip)

	i.mu.Lock()
	hit, ok := i.cache[key]
	i.mu.Unlock()

	if !ok {
		var (
			value  string
			source string
			err    error
		)
		if sp, isSource := i.provider.(SourceProvider); isSource {
			value, source, err = sp.GetWithSource(ctx, key)
		} else {
			value, err = i.provider.Get(ctx, key)
			source = i.name
		}
		if err != nil {
			if hasDefault {
				i.record(key, "", true, owner, fn, file, line)
			}
			return "", err
		}
		hit = cached{value: value, source: source}
		i.mu.Lock()
		i.cache[key] = hit
		i.mu.Unlock()
	}

	i.record(key, hit.source, false, owner, fn, file, line)
	return hit.value, nil
}

func (i *inspector) record(key, source string, usedDefault bool, owner reflect.Type, fn, file string, line int) {
	caller := introspection.Caller{
		Func: reflectx.ShortFuncName(fn),
		File: reflectx.ShortFileName(file),
		Line: line,
	}
	if caller.Func == "lifecycle.wire" || strings.HasPrefix(caller.Func, "config.LoadStruct") {
		caller = introspection.Caller{}
	}
	component := ""
	if owner != nil {
		component = reflectx.TypeName(owner)
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	i.accessed = append(i.accessed, introspection.ConfigAccess{
		Key:         key,
		Provider:    source,
		UsedDefault: usedDefault,
		Caller:      caller,
		Component:   component,
	})
}

func (i *inspector) accesses() []introspection.ConfigAccess {
	i.mu.Lock()
	out := make([]introspection.ConfigAccess, len(i.accessed))
	copy(out, i.accessed)
	i.mu.Unlock()

	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Key != out[b].Key {
			return out[a].Key < out[b].Key
		}
		if out[a].Caller.File != out[b].Caller.File {
			return out[a].Caller.File < out[b].Caller.File
		}
		return out[a].Caller.Line < out[b].Caller.Line
	})
	return out
}
