package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// maxDotEnvDepth bounds how many parent directories FindDotEnv climbs.
const maxDotEnvDepth = 6

var utf8BOM = []byte("\ufeff")

// DotEnvProvider serves values parsed from a .env file.
// The file is read once; later edits are not picked up.
type DotEnvProvider struct {
	path   string
	values map[string]string
}

// NewDotEnvProvider parses the file at path.
func NewDotEnvProvider(path string) (DotEnvProvider, error) {
	f, err := os.Open(path)
	if err != nil {
		return DotEnvProvider{}, err
	}
	defer f.Close() //nolint:errcheck

	values, err := ParseDotEnv(f)
	if err != nil {
		return DotEnvProvider{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return DotEnvProvider{path: path, values: values}, nil
}

// Get returns the value assigned to name in the file.
func (p DotEnvProvider) Get(_ context.Context, name string) (string, error) {
	value, ok := p.values[name]
	if !ok || value == "" {
		return "", fmt.Errorf("key '%s' is not set in %s", name, p.path)
	}
	return value, nil
}

// Path is the file the provider was loaded from.
func (p DotEnvProvider) Path() string {
	return p.path
}

// ParseDotEnv reads a .env document with the usual dotenv rules: # comments,
// an optional "export " prefix, quoted values, escapes inside double quotes
// and inline comments after unquoted values. A leading byte order mark is ignored.
func ParseDotEnv(r io.Reader) (map[string]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return godotenv.UnmarshalBytes(bytes.TrimPrefix(data, utf8BOM))
}

// FindDotEnv looks for name in the working directory and its parents.
// It returns os.ErrNotExist when no file is found.
func FindDotEnv(name string) (string, error) {
	if filepath.IsAbs(name) {
		if _, err := os.Stat(name); err != nil {
			return "", err
		}
		return name, nil
	}

	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for range maxDotEnvDepth {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}
