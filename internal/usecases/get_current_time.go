package usecases

import (
	"context"

	"github.com/cleitonmarx/nowapi/internal/depend"
	"github.com/cleitonmarx/nowapi/internal/domain"
	"github.com/cleitonmarx/nowapi/internal/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// TimezoneLookupsMetric counts timezone resolutions by result.
const TimezoneLookupsMetric = "nowapi.timezone.lookups"

// GetCurrentTime defines the interface for the GetCurrentTime use case.
type GetCurrentTime interface {
	// Text returns the current time in timezone as "<Place>: HH:MM:SS".
	Text(ctx context.Context, timezone string) (string, error)
	// JSON returns the detailed view of the current time in timezone.
	JSON(ctx context.Context, timezone string) (domain.CurrentTimeView, error)
}

// GetCurrentTimeImpl is the implementation of the GetCurrentTime use case.
type GetCurrentTimeImpl struct {
	clock   domain.CurrentTimeProvider
	lookups metric.Int64Counter
}

// NewGetCurrentTimeImpl creates a new instance of GetCurrentTimeImpl.
func NewGetCurrentTimeImpl(clock domain.CurrentTimeProvider) (GetCurrentTimeImpl, error) {
	lookups, err := tracing.Meter().Int64Counter(
		TimezoneLookupsMetric,
		metric.WithDescription("Timezone resolutions by result"),
	)
	if err != nil {
		return GetCurrentTimeImpl{}, err
	}
	return GetCurrentTimeImpl{clock: clock, lookups: lookups}, nil
}

// Text returns the plain text rendering of the current time in timezone.
func (gct GetCurrentTimeImpl) Text(ctx context.Context, timezone string) (string, error) {
	spanCtx, span := tracing.Start(ctx, trace.WithAttributes(attribute.String("timezone", timezone)))
	defer span.End()

	moment, err := gct.resolve(spanCtx, timezone)
	if tracing.RecordErrorAndStatus(span, err) {
		return "", err
	}
	return moment.Text(), nil
}

// JSON returns the detailed view of the current time in timezone.
func (gct GetCurrentTimeImpl) JSON(ctx context.Context, timezone string) (domain.CurrentTimeView, error) {
	spanCtx, span := tracing.Start(ctx, trace.WithAttributes(attribute.String("timezone", timezone)))
	defer span.End()

	moment, err := gct.resolve(spanCtx, timezone)
	if tracing.RecordErrorAndStatus(span, err) {
		return domain.CurrentTimeView{}, err
	}
	return moment.View(), nil
}

func (gct GetCurrentTimeImpl) resolve(ctx context.Context, timezone string) (domain.ResolvedMoment, error) {
	moment, err := domain.ResolveMoment(timezone, gct.clock.Now().UTC())
	result := "ok"
	if err != nil {
		result = "invalid"
	}
	gct.lookups.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
	return moment, err
}

// InitGetCurrentTime initializes the GetCurrentTime use case and registers it in the dependency container.
type InitGetCurrentTime struct {
	Clock domain.CurrentTimeProvider `resolve:""`
}

// Initialize registers GetCurrentTimeImpl as the GetCurrentTime use case.
func (igct *InitGetCurrentTime) Initialize(ctx context.Context) (context.Context, error) {
	uc, err := NewGetCurrentTimeImpl(igct.Clock)
	if err != nil {
		return ctx, err
	}
	depend.Register[GetCurrentTime](uc)
	return ctx, nil
}
