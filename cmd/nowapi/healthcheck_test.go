package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/cleitonmarx/nowapi/internal/tracing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbe(t *testing.T) {
	tests := map[string]struct {
		statuses  []int
		expectErr string
		attempts  int32
	}{
		"healthy": {
			statuses: []int{http.StatusOK},
			attempts: 1,
		},
		"recovers-after-retry": {
			statuses: []int{http.StatusServiceUnavailable, http.StatusOK},
			attempts: 2,
		},
		"not-found-is-not-retried": {
			statuses:  []int{http.StatusNotFound},
			expectErr: "health check failed: unexpected status code: 404",
			attempts:  1,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				n := int(calls.Add(1)) - 1
				if n >= len(tt.statuses) {
					n = len(tt.statuses) - 1
				}
				w.WriteHeader(tt.statuses[n])
			}))
			defer srv.Close()

			client := tracing.NewHTTPClient(nil, 2, 10*time.Millisecond)
			err := probe(context.Background(), client, srv.URL+"/health")
			if tt.expectErr != "" {
				assert.EqualError(t, err, tt.expectErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.attempts, calls.Load())
		})
	}
}

func TestProbe_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := probe(context.Background(), tracing.NewHTTPClient(nil, 0, time.Millisecond), url)
	assert.ErrorContains(t, err, "health check failed")
}

func TestCLI_Parse(t *testing.T) {
	tests := map[string]struct {
		args     []string
		command  string
		validate func(t *testing.T)
	}{
		"serve-is-default": {
			args:    []string{},
			command: "serve",
		},
		"healthcheck-flags": {
			args:    []string{"healthcheck", "--url", "http://127.0.0.1:9090/health", "--retries", "5"},
			command: "healthcheck",
			validate: func(t *testing.T) {
				assert.Equal(t, "http://127.0.0.1:9090/health", cli.Healthcheck.URL)
				assert.Equal(t, 5, cli.Healthcheck.Retries)
				assert.Equal(t, 5*time.Second, cli.Healthcheck.Timeout)
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			parser, err := kong.New(&cli, kong.Name("nowapi"), kong.Exit(func(int) { t.Fatal("unexpected exit") }))
			require.NoError(t, err)
			kctx, err := parser.Parse(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.command, kctx.Command())
			if tt.validate != nil {
				tt.validate(t)
			}
		})
	}
}
