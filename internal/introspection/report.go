// Package introspection describes what the application wired at startup:
// which configuration keys were read and from where, which dependencies were
// registered and resolved, and which components were started.
package introspection

import (
	"encoding/json"
	"reflect"
)

// Report is handed to introspectors after initialization and before runnables start.
type Report struct {
	Configs      []ConfigAccess
	Deps         []DepEvent
	Runners      []ComponentInfo
	Initializers []ComponentInfo
}

// ConfigAccess records one read of a configuration key.
type ConfigAccess struct {
	Key         string `json:"key"`
	Provider    string `json:"provider"`
	UsedDefault bool   `json:"usedDefault"`
	Caller      Caller `json:"caller"`
	Component   string `json:"component"`
}

// DepEventKind tells registrations and resolutions apart.
type DepEventKind string

const (
	DepRegistered DepEventKind = "register"
	DepResolved   DepEventKind = "resolve"
)

// DepEvent is a single dependency registration or resolution.
type DepEvent struct {
	Kind      DepEventKind `json:"kind"`
	Type      string       `json:"type"`
	Impl      string       `json:"impl"`
	Caller    Caller       `json:"caller"`
	Component string       `json:"component"`
	Order     int          `json:"order"`
}

// ComponentInfo names an initializer or runnable registered with the app.
type ComponentInfo struct {
	Type      string
	Component reflect.Type
}

// Caller is the code location behind an event.
type Caller struct {
	Func string `json:"func"`
	File string `json:"file"`
	Line int    `json:"line"`
}

type serializableReport struct {
	Configs      []ConfigAccess `json:"configs"`
	Deps         []DepEvent     `json:"deps"`
	Runners      []string       `json:"runners"`
	Initializers []string       `json:"initializers"`
}

// MarshalJSON drops the reflect.Type values, which do not serialize.
func (r Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(serializableReport{
		Configs:      nonNil(r.Configs),
		Deps:         nonNil(r.Deps),
		Runners:      typeNames(r.Runners),
		Initializers: typeNames(r.Initializers),
	})
}

// ToJSON returns the report as indented JSON.
func (r Report) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

func typeNames(infos []ComponentInfo) []string {
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Type)
	}
	return names
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
