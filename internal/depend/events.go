package depend

import (
	"reflect"
	"strings"
	"sync"

	"github.com/cleitonmarx/nowapi/internal/introspection"
	"github.com/cleitonmarx/nowapi/internal/reflectx"
)

var (
	eventsMu sync.Mutex
	events   []introspection.DepEvent
	order    int
)

// record appends an event attributed to the function skip frames above record.
// Calls made by the lifecycle wiring itself are left without a caller.
func record(kind introspection.DepEventKind, depType reflect.Type, dependency any, owner reflect.Type, skip int) {
	fn, file, line := reflectx.Caller(skip)
	caller := introspection.Caller{
		Func: reflectx.ShortFuncName(fn),
		File: reflectx.ShortFileName(file),
		Line: line,
	}
	if caller.Func == "lifecycle.wire" || strings.HasPrefix(caller.Func, "depend.ResolveStruct") {
		caller = introspection.Caller{}
	}

	component := ""
	if owner != nil {
		component = reflectx.TypeName(owner)
	}

	eventsMu.Lock()
	defer eventsMu.Unlock()
	order++
	events = append(events, introspection.DepEvent{
		Kind:      kind,
		Type:      reflectx.TypeName(depType),
		Impl:      reflectx.TypeNameOf(dependency),
		Caller:    caller,
		Component: component,
		Order:     order,
	})
}

// Events returns a copy of every registration and resolution recorded so far.
func Events() []introspection.DepEvent {
	eventsMu.Lock()
	defer eventsMu.Unlock()
	out := make([]introspection.DepEvent, len(events))
	copy(out, events)
	return out
}
