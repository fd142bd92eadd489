package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// CommandMetricName counts executed commands by kind and outcome.
const CommandMetricName = "catalog.commands"

// Instruments opens one span per command and counts outcomes. It reads the global providers, so it
// must be built after otel.Providers.SetGlobal.
type Instruments struct {
	tracer   trace.Tracer
	commands metric.Int64Counter
}

// NewInstruments returns instruments named after scope. A counter that cannot be created is
// replaced by a no-op one.
func NewInstruments(scope string) *Instruments {
	counter, err := otel.Meter(scope).Int64Counter(CommandMetricName,
		metric.WithDescription("Commands executed, by kind and outcome"))
	if err != nil {
		counter, _ = otel.Meter("noop").Int64Counter(CommandMetricName)
	}
	return &Instruments{tracer: otel.Tracer(scope), commands: counter}
}

// Start begins the span for a command. Call the returned func with the command's error.
func (i *Instruments) Start(ctx context.Context, kind string, orgID int64) (context.Context, func(error)) {
	ctx, span := i.tracer.Start(ctx, "command."+kind, trace.WithAttributes(
		attribute.String("command.kind", kind),
		attribute.Int64("org.id", orgID),
	))
	return ctx, func(err error) {
		outcome := Outcome(err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.SetAttributes(attribute.String("command.outcome", outcome))
		span.End()
		i.commands.Add(ctx, 1, metric.WithAttributes(
			attribute.String("kind", kind),
			attribute.String("outcome", outcome),
		))
	}
}
