package cmd

import (
	"context"
	"log/slog"

	"github.com/facilityops/flowdesk/pkg/otelhelper"
	"go.opentelemetry.io/otel/trace"
)

// NewTracer returns an exporting tracer when enabled and a no-op tracer otherwise.
// Exporter failures fall back to the no-op tracer so the API can still start.
//
//nolint:ireturn
func NewTracer(ctx context.Context, enabled bool, logger *slog.Logger) (trace.Tracer, otelhelper.ShutdownFunc) {
	noopShutdown := func(context.Context) error { return nil }

	if !enabled {
		return otelhelper.NoopTracer(), noopShutdown
	}

	tracer, shutdown, err := otelhelper.NewTracer(ctx, otelhelper.DefaultServiceName)
	if err != nil {
		logger.WarnContext(ctx, "Tracing disabled", "error", err)

		return otelhelper.NoopTracer(), noopShutdown
	}

	return tracer, shutdown
}
