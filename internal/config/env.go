package config

import (
	"context"
	"fmt"
	"os"
)

// EnvVarProvider reads process environment variables.
// A variable that is set to the empty string counts as unset, so declared defaults apply.
type EnvVarProvider struct{}

// NewEnvVarProvider returns the default provider.
func NewEnvVarProvider() EnvVarProvider {
	return EnvVarProvider{}
}

// Get returns the value of the environment variable name.
func (EnvVarProvider) Get(_ context.Context, name string) (string, error) {
	value, exists := os.LookupEnv(name)
	if !exists || value == "" {
		return "", fmt.Errorf("environment variable '%s' is not set", name)
	}
	return value, nil
}
