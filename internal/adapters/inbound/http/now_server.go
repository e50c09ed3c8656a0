package http

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/cleitonmarx/nowapi/internal/tracing"
	"github.com/cleitonmarx/nowapi/internal/usecases"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"
)

// NowServer is the HTTP server adapter exposing the current time in any IANA timezone.
//
// Configuration is read once at startup through struct tags and dependencies
// are injected by the lifecycle before Run is called.
type NowServer struct {
	Port            int                     `config:"HTTP_PORT" default:"8080"`
	DefaultTZ       string                  `config:"DEFAULT_TZ" default:"UTC"`
	CORSOrigins     []string                `config:"CORS_ORIGINS" default:"*"`
	ShutdownTimeout time.Duration           `config:"HTTP_SHUTDOWN_TIMEOUT" default:"5s"`
	Logger          *log.Logger             `resolve:""`
	GetCurrentTime  usecases.GetCurrentTime `resolve:""`

	addr atomic.Pointer[string]
}

// Handler returns the routes wrapped in the middleware chain.
func (s *NowServer) Handler() http.Handler {
	mux := http.NewServeMux()
	route := func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
			trace.SpanFromContext(r.Context()).SetName(tracing.SpanNameFormatter("", r))
			if labeler, ok := otelhttp.LabelerFromContext(r.Context()); ok {
				labeler.Add(tracing.WithHttpMetricAttributes(r)...)
			}
			h(w, r)
		})
	}
	route("GET /health", s.health)
	route("GET /now", s.now)
	route("GET /now/json", s.nowJSON)

	var h http.Handler = unmatchedAsJSON(mux)
	h = otelhttp.NewMiddleware(
		"nowapi",
		otelhttp.WithSpanNameFormatter(tracing.SpanNameFormatter),
	)(h)
	h = cors.New(cors.Options{
		AllowedOrigins: s.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead},
		ExposedHeaders: []string{RequestIDHeader},
	}).Handler(h)
	h = RequestLogger(h, s.Logger)
	return RequestID(h)
}

// Run starts the HTTP server and shuts it down gracefully when ctx is cancelled.
func (s *NowServer) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.Port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", s.Port, err)
	}
	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(ln.Addr().(*net.TCPAddr).Port))
	s.addr.Store(&addr)
	defer s.addr.Store(nil)

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          s.Logger,
	}

	errCh := make(chan error, 1)
	go func() {
		s.Logger.Printf("NowServer: Listening on %s (default timezone %s)", ln.Addr(), s.DefaultTZ)
		errCh <- srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		s.Logger.Print("NowServer: Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.ShutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		if serveErr := <-errCh; !errors.Is(serveErr, http.ErrServerClosed) && err == nil {
			err = serveErr
		}
		return err
	case err := <-errCh:
		return err
	}
}

// Addr is the loopback address the server is reachable at, empty until Run has bound it.
func (s *NowServer) Addr() string {
	if addr := s.addr.Load(); addr != nil {
		return *addr
	}
	return ""
}

// IsReady checks if the NowServer is ready by calling its health endpoint.
func (s *NowServer) IsReady(ctx context.Context) error {
	addr := s.Addr()
	if addr == "" {
		return errors.New("not listening")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+addr+"/health", nil)
	if err != nil {
		return err
	}
	client := &http.Client{
		Transport: &http.Transport{DisableKeepAlives: true},
		Timeout:   time.Second,
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return nil
}
