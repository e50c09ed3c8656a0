package config

import (
	"context"
	"errors"
	"io"
	"log"
	"os"

	"github.com/cleitonmarx/nowapi/internal/config"
)

// InitConfigProvider installs the global configuration provider: environment
// variables first, then the .env file, then the YAML file. Files that do not
// exist are skipped.
type InitConfigProvider struct {
	EnvFile    string `config:"NOWAPI_ENV_FILE" default:".env"`
	ConfigFile string `config:"NOWAPI_CONFIG_FILE" default:"nowapi.yaml"`
	out        io.Writer
}

func (icp *InitConfigProvider) Initialize(ctx context.Context) (context.Context, error) {
	out := icp.out
	if out == nil {
		out = os.Stderr
	}
	logger := log.New(out, "config ", log.LstdFlags|log.Lmsgprefix)

	providers := []config.Provider{config.NewEnvVarProvider()}

	envPath, err := config.FindDotEnv(icp.EnvFile)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logger.Printf("no %s file found, skipping", icp.EnvFile)
	case err != nil:
		return ctx, err
	default:
		p, err := config.NewDotEnvProvider(envPath)
		if err != nil {
			return ctx, err
		}
		logger.Printf("loaded %s", envPath)
		providers = append(providers, p)
	}

	yamlProvider, err := config.NewYAMLFileProvider(icp.ConfigFile)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logger.Printf("no %s file found, skipping", icp.ConfigFile)
	case err != nil:
		return ctx, err
	default:
		logger.Printf("loaded %s", icp.ConfigFile)
		providers = append(providers, yamlProvider)
	}

	config.SetGlobalProvider(config.NewCompositeProvider(providers...))
	return ctx, nil
}
