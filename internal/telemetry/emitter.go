package telemetry

import (
	"context"
	"encoding/json"
	"time"

	orgdomain "f3-catalog/backend/internal/org/domain"
	"f3-catalog/backend/internal/platform/logger"
	"f3-catalog/backend/internal/telemetry/domain"
)

// EventEmitter emits change events (e.g. to OTel Logs). Best-effort; callers log and ignore errors.
type EventEmitter interface {
	Emit(ctx context.Context, event *domain.ChangeEvent) error
}

// ChangeEmitter publishes the change records applied by one org save.
type ChangeEmitter struct {
	emitter EventEmitter
	log     *logger.Logger
	now     func() time.Time
}

// NewChangeEmitter returns a ChangeEmitter. A nil emitter makes Emit a no-op.
func NewChangeEmitter(emitter EventEmitter, log *logger.Logger) *ChangeEmitter {
	if log == nil {
		log = logger.Nop()
	}
	return &ChangeEmitter{emitter: emitter, log: log, now: time.Now}
}

// Emit sends one event per change, asynchronously and in order of the slice.
func (c *ChangeEmitter) Emit(ctx context.Context, orgID, userID int64, changes []orgdomain.Change) {
	if c == nil || c.emitter == nil || len(changes) == 0 {
		return
	}
	events := make([]*domain.ChangeEvent, 0, len(changes))
	for _, ch := range changes {
		payload, err := json.Marshal(ch)
		if err != nil {
			c.log.Warn("telemetry: encode change", "kind", ch.Kind(), "error", err)
			continue
		}
		events = append(events, &domain.ChangeEvent{
			OrgID:     orgID,
			UserID:    userID,
			Kind:      string(ch.Kind()),
			Payload:   payload,
			CreatedAt: c.now().UTC(),
		})
	}
	EmitAsync(c.emitter, ctx, c.log, events...)
}
