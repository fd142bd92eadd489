package otel

import (
	"context"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"f3-catalog/backend/internal/telemetry"
	"f3-catalog/backend/internal/telemetry/domain"
)

// LoggerName is the instrumentation scope of emitted change records.
const LoggerName = "f3catalog.changes"

// recordEmitter is the subset of otellog.Logger used by the emitter.
type recordEmitter interface {
	Emit(ctx context.Context, rec otellog.Record)
}

// NewEventEmitter returns an EventEmitter that sends events as OTel log records via the given LoggerProvider.
// If provider is nil, returns a no-op emitter.
func NewEventEmitter(provider *sdklog.LoggerProvider) telemetry.EventEmitter {
	if provider == nil {
		return noopEmitter{}
	}
	return &otelEmitter{logger: provider.Logger(LoggerName)}
}

// NewEventEmitterWithLogger wraps any record sink; tests use it to capture records.
func NewEventEmitterWithLogger(l recordEmitter) telemetry.EventEmitter {
	return &otelEmitter{logger: l}
}

type noopEmitter struct{}

func (noopEmitter) Emit(context.Context, *domain.ChangeEvent) error { return nil }

type otelEmitter struct {
	logger recordEmitter
}

// Emit converts the change event to an OTel log record: the JSON payload is the body, the ids and
// kind are attributes.
func (e *otelEmitter) Emit(ctx context.Context, event *domain.ChangeEvent) error {
	if event == nil {
		return nil
	}
	rec := otellog.Record{}
	rec.SetTimestamp(event.CreatedAt)
	if rec.Timestamp().IsZero() {
		rec.SetTimestamp(time.Now().UTC())
	}
	rec.SetSeverity(otellog.SeverityInfo)
	rec.SetEventName(event.Kind)
	if len(event.Payload) > 0 {
		rec.SetBody(otellog.BytesValue(event.Payload))
	}
	rec.AddAttributes(
		otellog.Int64("org_id", event.OrgID),
		otellog.String("change_kind", event.Kind),
	)
	if event.UserID != 0 {
		rec.AddAttributes(otellog.Int64("user_id", event.UserID))
	}
	e.logger.Emit(ctx, rec)
	return nil
}
