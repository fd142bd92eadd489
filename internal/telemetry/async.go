package telemetry

import (
	"context"
	"sync"
	"time"

	"f3-catalog/backend/internal/platform/logger"
	"f3-catalog/backend/internal/telemetry/domain"
)

// emitTimeout is the max time allowed for one async batch. Used by EmitAsync and by ShutdownDrainDuration.
const emitTimeout = 5 * time.Second

// ShutdownDrainDuration bounds Drain after gRPC GracefulStop and before the OTel providers shut down.
// Must be >= emitTimeout.
const ShutdownDrainDuration = emitTimeout

// inflight counts EmitAsync batches that have not finished.
var inflight sync.WaitGroup

// Drain waits until every batch started by EmitAsync has finished or timeout elapses. It reports
// whether all batches finished.
func Drain(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// EmitAsync emits events in order from one goroutine so the caller is not blocked. Errors are logged.
//
// The goroutine uses context.Background() with emitTimeout so request cancellation does not abort
// an in-flight emit. A nil emitter or an empty batch returns without starting a goroutine.
func EmitAsync(emitter EventEmitter, _ context.Context, log *logger.Logger, events ...*domain.ChangeEvent) {
	if emitter == nil || len(events) == 0 {
		return
	}
	if log == nil {
		log = logger.Nop()
	}
	inflight.Add(1)
	go func() {
		defer inflight.Done()
		emitCtx, cancel := context.WithTimeout(context.Background(), emitTimeout)
		defer cancel()
		for _, ev := range events {
			if ev == nil {
				continue
			}
			if err := emitter.Emit(emitCtx, ev); err != nil {
				log.Warn("telemetry: async emit failed", "kind", ev.Kind, "org_id", ev.OrgID, "error", err)
			}
		}
	}()
}
