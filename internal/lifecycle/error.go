package lifecycle

import (
	"fmt"
	"reflect"

	"github.com/cleitonmarx/nowapi/internal/reflectx"
)

// Error ties a failure to the component, or component method, that produced it.
type Error struct {
	Err           error
	ComponentName string
	FileLine      string
}

// NewError wraps err with the name of component. Method values and functions
// also carry their source location.
func NewError(err error, component any) Error {
	if reflect.TypeOf(component).Kind() == reflect.Func {
		name, fileLine := reflectx.FuncLocation(component)
		return Error{Err: err, ComponentName: name, FileLine: fileLine}
	}
	return Error{Err: err, ComponentName: reflectx.TypeName(reflect.TypeOf(component))}
}

// newMethodError names the failing method after the concrete type of component.
// Method values taken through an interface only resolve to a compiler wrapper.
func newMethodError(err error, component any, method string) Error {
	return Error{Err: err, ComponentName: reflectx.TypeName(reflect.TypeOf(component)) + "." + method}
}

func (e Error) Error() string {
	if e.FileLine == "" {
		return fmt.Sprintf("error: %v, component: %s", e.Err, e.ComponentName)
	}
	return fmt.Sprintf("error: %v, function: %s, location: %s", e.Err, e.ComponentName, e.FileLine)
}

func (e Error) Unwrap() error {
	return e.Err
}
