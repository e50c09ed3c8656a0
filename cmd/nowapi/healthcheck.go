package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/cleitonmarx/nowapi/internal/tracing"
)

// healthcheckCmd lets container runtimes probe the server without curl in the image.
type healthcheckCmd struct {
	URL     string        `help:"Health endpoint to probe." env:"NOWAPI_HEALTH_URL" default:"http://127.0.0.1:8080/health"`
	Timeout time.Duration `help:"Overall probe timeout." default:"5s"`
	Retries int           `help:"Retries on connection errors and 5xx responses." default:"2"`
}

func (c healthcheckCmd) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()

	logger := log.New(os.Stderr, "healthcheck ", log.Lmsgprefix)
	return probe(ctx, tracing.NewHTTPClient(logger, c.Retries, time.Second), c.URL)
}

func probe(ctx context.Context, client *http.Client, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed: unexpected status code: %d", resp.StatusCode)
	}
	return nil
}
