package tracing

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/cleitonmarx/nowapi/internal/reflectx"
	"github.com/hashicorp/go-retryablehttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.30.0"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/cleitonmarx/nowapi"

// durationBuckets are seconds, sized for sub-millisecond handlers up to slow shutdowns.
var durationBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// SpanNameFormatter uses the mux pattern ("GET /now/json") as the span name,
// or method and raw path when no route matched.
func SpanNameFormatter(_ string, r *http.Request) string {
	return route(r)
}

// WithHttpMetricAttributes tags HTTP metrics with the route so /now?tz=... calls share one series.
func WithHttpMetricAttributes(r *http.Request) []attribute.KeyValue {
	return []attribute.KeyValue{semconv.HTTPRoute(route(r))}
}

func route(r *http.Request) string {
	if r.Pattern != "" {
		return r.Pattern
	}
	return r.Method + " " + r.URL.Path
}

// Start opens a span called "pkg::Type::Method" after whoever called it.
func Start(ctx context.Context, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	fn, _, _ := reflectx.Caller(1)
	name := strings.ReplaceAll(reflectx.ShortFuncName(fn), ".", "::")
	return otel.GetTracerProvider().Tracer(instrumentationName).Start(ctx, name, opts...)
}

// Meter is looked up on every call so a provider installed after package init is honoured.
func Meter() metric.Meter {
	return otel.GetMeterProvider().Meter(instrumentationName)
}

// RecordErrorAndStatus marks span as failed when err is non-nil and reports whether it did.
func RecordErrorAndStatus(span trace.Span, err error) bool {
	if err == nil {
		span.SetStatus(codes.Ok, "OK")
		return false
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return true
}

// InitOpenTelemetry swaps the global no-op providers for OTLP/HTTP exporting ones.
// It is off by default; endpoints and headers follow the OTEL_EXPORTER_OTLP_* variables.
type InitOpenTelemetry struct {
	Logger      *log.Logger `resolve:""`
	Enabled     bool        `config:"OTEL_ENABLED" default:"false"`
	ServiceName string      `config:"OTEL_SERVICE_NAME" default:"nowapi"`

	shutdowns []func(context.Context) error
}

// Initialize installs propagators, tracer and meter providers when enabled.
func (o *InitOpenTelemetry) Initialize(ctx context.Context) (context.Context, error) {
	if !o.Enabled {
		o.Logger.Print("OpenTelemetry disabled")
		return ctx, nil
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceNameKey.String(o.ServiceName)))
	if err != nil {
		return ctx, fmt.Errorf("failed to create resource: %w", err)
	}

	spanExporter, err := otlptracehttp.New(ctx)
	if err != nil {
		return ctx, fmt.Errorf("failed to create span exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(spanExporter, sdktrace.WithBatchTimeout(time.Second)),
	)
	o.shutdowns = append(o.shutdowns, tp.Shutdown)
	otel.SetTracerProvider(tp)

	metricExporter, err := otlpmetrichttp.New(ctx, otlpmetrichttp.WithInsecure())
	if err != nil {
		return ctx, fmt.Errorf("failed to create metric exporter: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(5*time.Second))),
		sdkmetric.WithView(sdkmetric.NewView(
			sdkmetric.Instrument{Name: "*duration*"},
			sdkmetric.Stream{Aggregation: sdkmetric.AggregationExplicitBucketHistogram{Boundaries: durationBuckets}},
		)),
	)
	o.shutdowns = append(o.shutdowns, mp.Shutdown)
	otel.SetMeterProvider(mp)

	o.Logger.Printf("OpenTelemetry enabled for service %s", o.ServiceName)
	return ctx, nil
}

// Close flushes and stops whatever Initialize installed. Providers shut their exporters down too.
func (o *InitOpenTelemetry) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var errs []error
	for i := len(o.shutdowns) - 1; i >= 0; i-- {
		errs = append(errs, o.shutdowns[i](ctx))
	}
	if err := errors.Join(errs...); err != nil {
		o.Logger.Printf("OpenTelemetry shutdown: %v", err)
	}
}

// NewHTTPClient builds a client for calling nowapi itself: retryablehttp handles
// connection errors and 5xx with capped backoff, otelhttp traces each attempt.
// A nil logger silences retry logging.
func NewHTTPClient(logger *log.Logger, retryMax int, retryWaitMax time.Duration) *http.Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = retryMax
	rc.RetryWaitMax = retryWaitMax
	rc.Logger = nil
	if logger != nil {
		rc.Logger = logger
	}

	client := rc.StandardClient()
	client.Transport = otelhttp.NewTransport(client.Transport, otelhttp.WithSpanNameFormatter(SpanNameFormatter))
	return client
}
