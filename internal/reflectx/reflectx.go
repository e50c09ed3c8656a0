// Package reflectx holds the reflection helpers behind tag-driven wiring:
// walking struct fields, naming types and locating callers for diagnostics.
package reflectx

import (
	"fmt"
	"path"
	"reflect"
	"runtime"
	"strings"
)

// FieldFunc is called for every field of a struct visited by VisitFields.
// owner is the pointer type that was passed to VisitFields.
type FieldFunc func(field reflect.Value, structField reflect.StructField, owner reflect.Type) error

// VisitFields calls each fn, in order, for every field of the struct target points to.
func VisitFields(target any, fns ...FieldFunc) error {
	v := reflect.ValueOf(target)
	if !IsStructPointer(v) {
		if !v.IsValid() {
			return fmt.Errorf("target must be a struct pointer, got nil")
		}
		return fmt.Errorf("target must be a struct pointer, got '%s'", TypeName(v.Type()))
	}
	owner := v.Type()
	elem := v.Elem()
	elemType := elem.Type()
	for i := range elem.NumField() {
		for _, fn := range fns {
			if err := fn(elem.Field(i), elemType.Field(i), owner); err != nil {
				return err
			}
		}
	}
	return nil
}

// SetField assigns value to field, failing for unexported fields.
func SetField(field reflect.Value, structField reflect.StructField, value any) error {
	if !field.CanSet() {
		return fmt.Errorf("field '%s' is not settable", structField.Name)
	}
	field.Set(reflect.ValueOf(value))
	return nil
}

// IsStructPointer reports whether v is a non-nil pointer to a struct.
func IsStructPointer(v reflect.Value) bool {
	return v.Kind() == reflect.Pointer && !v.IsNil() && v.Elem().Kind() == reflect.Struct
}

// TypeName renders t as "pkg.Name", or the plain name for builtin and unnamed types.
func TypeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if t.Kind() == reflect.Pointer && t.Name() == "" {
		return "*" + TypeName(t.Elem())
	}
	if t.PkgPath() == "" {
		if t.Name() == "" {
			return t.String()
		}
		return t.Name()
	}
	return path.Base(t.PkgPath()) + "." + t.Name()
}

// TypeNameOf is the %T rendering of v.
func TypeNameOf(v any) string {
	return fmt.Sprintf("%T", v)
}

// FuncLocation returns the short name and "file:line" of a function value.
func FuncLocation(fn any) (string, string) {
	f := runtime.FuncForPC(reflect.ValueOf(fn).Pointer())
	if f == nil {
		return "unknown", "unknown"
	}
	file, line := f.FileLine(f.Entry())
	return ShortFuncName(f.Name()), fmt.Sprintf("%s:%d", file, line)
}

// Caller returns the function name, file and line skip frames above its caller.
func Caller(skip int) (string, string, int) {
	pc, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return "unknown", "unknown", 0
	}
	f := runtime.FuncForPC(pc)
	if f == nil {
		return "unknown", "unknown", 0
	}
	return f.Name(), file, line
}

// ShortFuncName trims the import path from a qualified function name.
func ShortFuncName(name string) string {
	if idx := strings.LastIndex(name, "/"); idx != -1 {
		return name[idx+1:]
	}
	return name
}

// ShortFileName keeps only the last directory and the file name.
func ShortFileName(file string) string {
	dir, name := path.Split(file)
	return path.Base(path.Clean(dir)) + "/" + name
}
