package repository

import (
	"context"

	"f3-catalog/backend/internal/audit/domain"
)

// Repository persists audit logs. Rows are append-only.
type Repository interface {
	Create(ctx context.Context, a *domain.AuditLog) error
	ListByOrg(ctx context.Context, orgID int64, limit, offset int) ([]*domain.AuditLog, error)
}
