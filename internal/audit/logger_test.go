package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"f3-catalog/backend/internal/audit/domain"
	"f3-catalog/backend/internal/platform/logger"
)

type mockAuditRepo struct {
	entries   []*domain.AuditLog
	createErr error
}

func (m *mockAuditRepo) Create(_ context.Context, entry *domain.AuditLog) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockAuditRepo) ListByOrg(context.Context, int64, int, int) ([]*domain.AuditLog, error) {
	return m.entries, nil
}

func TestLogger_LogEvent(t *testing.T) {
	repo := &mockAuditRepo{}
	l := NewLogger(repo, logger.Nop())

	l.LogEvent(context.Background(), Event{
		OrgID:    3,
		UserID:   42,
		Action:   "add_event_type",
		Resource: "org",
		IP:       "192.168.1.1",
		Metadata: map[string]any{"code": "OK"},
	})

	if len(repo.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(repo.entries))
	}
	e := repo.entries[0]
	if _, err := uuid.Parse(e.ID); err != nil {
		t.Errorf("id %q is not a uuid: %v", e.ID, err)
	}
	if e.OrgID == nil || *e.OrgID != 3 {
		t.Errorf("org_id = %v, want 3", e.OrgID)
	}
	if e.UserID == nil || *e.UserID != 42 {
		t.Errorf("user_id = %v, want 42", e.UserID)
	}
	if e.Action != "add_event_type" || e.Resource != "org" || e.IP != "192.168.1.1" {
		t.Errorf("unexpected entry %+v", e)
	}
	if string(e.Metadata) != `{"code":"OK"}` {
		t.Errorf("metadata = %s", e.Metadata)
	}
	if e.CreatedAt.IsZero() {
		t.Error("created_at not set")
	}
}

func TestLogger_LogEvent_Defaults(t *testing.T) {
	repo := &mockAuditRepo{}
	NewLogger(repo, nil).LogEvent(context.Background(), Event{Action: "execute", Resource: "org"})

	e := repo.entries[0]
	if e.OrgID != nil || e.UserID != nil {
		t.Errorf("zero ids must be stored as NULL, got org=%v user=%v", e.OrgID, e.UserID)
	}
	if e.IP != "unknown" {
		t.Errorf("ip = %q, want unknown", e.IP)
	}
	if e.Metadata != nil {
		t.Errorf("metadata = %s, want nil", e.Metadata)
	}
}

func TestLogger_LogEvent_RepositoryErrorIsSwallowed(t *testing.T) {
	repo := &mockAuditRepo{createErr: errors.New("db down")}
	NewLogger(repo, logger.Nop()).LogEvent(context.Background(), Event{Action: "execute"})
	if len(repo.entries) != 0 {
		t.Errorf("expected no entries, got %d", len(repo.entries))
	}
}

func TestLogger_NilRepo(t *testing.T) {
	var l *Logger
	l.LogEvent(context.Background(), Event{Action: "execute"})
	NewLogger(nil, nil).LogEvent(context.Background(), Event{Action: "execute"})
}
