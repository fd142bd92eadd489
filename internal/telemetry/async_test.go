package telemetry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	orgdomain "f3-catalog/backend/internal/org/domain"
	"f3-catalog/backend/internal/platform/logger"
	"f3-catalog/backend/internal/telemetry/domain"
)

// mockEventEmitter implements EventEmitter for tests.
type mockEventEmitter struct {
	mu      sync.Mutex
	events  []*domain.ChangeEvent
	emitErr error
	done    chan struct{}
}

func newMockEmitter(expect int) *mockEventEmitter {
	return &mockEventEmitter{done: make(chan struct{}, expect)}
}

func (m *mockEventEmitter) Emit(_ context.Context, event *domain.ChangeEvent) error {
	m.mu.Lock()
	m.events = append(m.events, event)
	m.mu.Unlock()
	m.done <- struct{}{}
	return m.emitErr
}

func (m *mockEventEmitter) wait(t *testing.T, n int) []*domain.ChangeEvent {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-m.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for event %d of %d", i+1, n)
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.ChangeEvent(nil), m.events...)
}

func TestEmitAsync_NilEmitterOrEmptyBatch(t *testing.T) {
	// Neither call should panic or start a goroutine that touches the emitter.
	EmitAsync(nil, context.Background(), nil, &domain.ChangeEvent{OrgID: 1})
	em := newMockEmitter(1)
	EmitAsync(em, context.Background(), nil)
	time.Sleep(10 * time.Millisecond)
	em.mu.Lock()
	defer em.mu.Unlock()
	if len(em.events) != 0 {
		t.Errorf("expected 0 events, got %d", len(em.events))
	}
}

func TestEmitAsync_UsesBackgroundContext(t *testing.T) {
	em := newMockEmitter(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	EmitAsync(em, ctx, logger.Nop(), &domain.ChangeEvent{OrgID: 1, Kind: "admin.assigned"})

	if got := em.wait(t, 1); got[0].Kind != "admin.assigned" {
		t.Errorf("kind = %q", got[0].Kind)
	}
}

func TestEmitAsync_ErrorsDoNotStopTheBatch(t *testing.T) {
	em := newMockEmitter(3)
	em.emitErr = errors.New("collector down")

	EmitAsync(em, context.Background(), logger.Nop(),
		&domain.ChangeEvent{Kind: "a"}, nil, &domain.ChangeEvent{Kind: "b"}, &domain.ChangeEvent{Kind: "c"})

	got := em.wait(t, 3)
	for i, want := range []string{"a", "b", "c"} {
		if got[i].Kind != want {
			t.Errorf("event %d kind = %q, want %q", i, got[i].Kind, want)
		}
	}
}

func TestChangeEmitter_EmitsOneEventPerChange(t *testing.T) {
	em := newMockEmitter(2)
	ce := NewChangeEmitter(em, logger.Nop())

	ce.Emit(context.Background(), 7, 42, []orgdomain.Change{
		orgdomain.AdminAssigned{UserID: 9},
		orgdomain.EventTagDeleted{ID: 3},
	})

	got := em.wait(t, 2)
	if got[0].Kind != string(orgdomain.ChangeAdminAssigned) || got[1].Kind != string(orgdomain.ChangeEventTagDeleted) {
		t.Fatalf("kinds = %q, %q", got[0].Kind, got[1].Kind)
	}
	if got[0].OrgID != 7 || got[0].UserID != 42 {
		t.Errorf("ids = %d/%d", got[0].OrgID, got[0].UserID)
	}
	if string(got[0].Payload) != `{"UserID":9}` {
		t.Errorf("payload = %s", got[0].Payload)
	}
}

func TestChangeEmitter_NilSafe(t *testing.T) {
	var ce *ChangeEmitter
	ce.Emit(context.Background(), 1, 1, []orgdomain.Change{orgdomain.AdminRevoked{UserID: 1}})
	NewChangeEmitter(nil, nil).Emit(context.Background(), 1, 1, []orgdomain.Change{orgdomain.AdminRevoked{UserID: 1}})
}

func TestOutcome(t *testing.T) {
	tests := map[string]error{
		"ok":    nil,
		"error": errors.New("boom"),
	}
	for want, err := range tests {
		if got := Outcome(err); got != want {
			t.Errorf("Outcome(%v) = %q, want %q", err, got, want)
		}
	}
}

type blockingEmitter struct{ release chan struct{} }

func (b *blockingEmitter) Emit(ctx context.Context, _ *domain.ChangeEvent) error {
	select {
	case <-b.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestDrain_WaitsForInFlightBatches(t *testing.T) {
	em := &blockingEmitter{release: make(chan struct{})}
	EmitAsync(em, context.Background(), logger.Nop(), &domain.ChangeEvent{OrgID: 1, Kind: "location.created"})

	if Drain(20 * time.Millisecond) {
		t.Fatal("Drain returned true while a batch was blocked")
	}
	close(em.release)
	if !Drain(2 * time.Second) {
		t.Fatal("Drain did not observe the finished batch")
	}
}
