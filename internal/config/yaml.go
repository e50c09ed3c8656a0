package config

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"
)

// YAMLFileProvider serves values from a flat YAML mapping, e.g.
//
//	DEFAULT_TZ: Europe/Madrid
//	HTTP_PORT: 8080
//	CORS_ORIGINS: [https://a.example, https://b.example]
//
// Scalars are kept as written; sequences are joined with commas.
type YAMLFileProvider struct {
	path   string
	values map[string]string
}

// NewYAMLFileProvider decodes the file at path.
func NewYAMLFileProvider(path string) (YAMLFileProvider, error) {
	f, err := os.Open(path)
	if err != nil {
		return YAMLFileProvider{}, err
	}
	defer f.Close() //nolint:errcheck

	values, err := decodeYAML(f)
	if err != nil {
		return YAMLFileProvider{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return YAMLFileProvider{path: path, values: values}, nil
}

// Get returns the value stored under name.
func (p YAMLFileProvider) Get(_ context.Context, name string) (string, error) {
	value, ok := p.values[name]
	if !ok {
		return "", fmt.Errorf("key '%s' is not set in %s", name, p.path)
	}
	return value, nil
}

func decodeYAML(r io.Reader) (map[string]string, error) {
	var doc map[string]yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return map[string]string{}, nil
		}
		return nil, err
	}

	values := make(map[string]string, len(doc))
	for key, node := range doc {
		switch node.Kind {
		case yaml.ScalarNode:
			if node.ShortTag() == "!!null" {
				continue
			}
			values[key] = node.Value
		case yaml.SequenceNode:
			items := make([]string, 0, len(node.Content))
			for _, item := range node.Content {
				if item.Kind != yaml.ScalarNode {
					return nil, fmt.Errorf("key '%s': only scalar list items are supported", key)
				}
				items = append(items, item.Value)
			}
			values[key] = strings.Join(items, ",")
		default:
			return nil, fmt.Errorf("key '%s': nested mappings are not supported", key)
		}
	}
	return values, nil
}
