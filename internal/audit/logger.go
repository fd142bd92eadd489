// Package audit records who changed what. Writes are best-effort: a failed write is logged and never
// fails the audited call.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"f3-catalog/backend/internal/audit/domain"
	auditrepo "f3-catalog/backend/internal/audit/repository"
	"f3-catalog/backend/internal/platform/logger"
)

// Event describes one audited call. Zero ids are stored as NULL.
type Event struct {
	OrgID    int64
	UserID   int64
	Action   string
	Resource string
	IP       string
	Metadata map[string]any
}

type Logger struct {
	repo auditrepo.Repository
	log  *logger.Logger
	now  func() time.Time
}

// NewLogger returns a Logger persisting to repo. A nil repo makes LogEvent a no-op.
func NewLogger(repo auditrepo.Repository, log *logger.Logger) *Logger {
	if log == nil {
		log = logger.Nop()
	}
	return &Logger{repo: repo, log: log, now: time.Now}
}

// LogEvent writes one audit row.
func (l *Logger) LogEvent(ctx context.Context, e Event) {
	if l == nil || l.repo == nil {
		return
	}
	entry := &domain.AuditLog{
		ID:        uuid.NewString(),
		OrgID:     optionalID(e.OrgID),
		UserID:    optionalID(e.UserID),
		Action:    e.Action,
		Resource:  e.Resource,
		IP:        e.IP,
		CreatedAt: l.now().UTC(),
	}
	if entry.IP == "" {
		entry.IP = "unknown"
	}
	if len(e.Metadata) > 0 {
		meta, err := json.Marshal(e.Metadata)
		if err != nil {
			l.log.Warn("audit metadata dropped", "action", e.Action, "error", err)
		} else {
			entry.Metadata = meta
		}
	}
	if err := l.repo.Create(ctx, entry); err != nil {
		l.log.Error("audit write failed", "action", e.Action, "resource", e.Resource, "error", err)
	}
}

func optionalID(id int64) *int64 {
	if id <= 0 {
		return nil
	}
	return &id
}
