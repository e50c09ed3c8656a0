package config

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cleitonmarx/nowapi/internal/reflectx"
)

type namedProvider struct {
	provider Provider
	name     string
}

// CompositeProvider asks each provider in turn and returns the first value found.
type CompositeProvider struct {
	providers []namedProvider
}

// NewCompositeProvider chains providers in priority order.
func NewCompositeProvider(providers ...Provider) CompositeProvider {
	named := make([]namedProvider, 0, len(providers))
	for _, p := range providers {
		named = append(named, namedProvider{provider: p, name: reflectx.TypeNameOf(p)})
	}
	return CompositeProvider{providers: named}
}

// Get returns the first value found.
func (p CompositeProvider) Get(ctx context.Context, name string) (string, error) {
	value, _, err := p.GetWithSource(ctx, name)
	return value, err
}

// GetWithSource also reports which provider answered.
func (p CompositeProvider) GetWithSource(ctx context.Context, name string) (string, string, error) {
	if len(p.providers) == 0 {
		return "", "", errors.New("no providers configured")
	}
	msgs := make([]string, 0, len(p.providers))
	for _, np := range p.providers {
		value, err := np.provider.Get(ctx, name)
		if err == nil {
			return value, np.name, nil
		}
		msgs = append(msgs, fmt.Sprintf("%s: %v", np.name, err))
	}
	return "", "", errors.New(strings.Join(msgs, "; "))
}
