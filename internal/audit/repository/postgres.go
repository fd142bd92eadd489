package repository

import (
	"context"
	"database/sql"

	"github.com/go-faster/errors"

	"f3-catalog/backend/internal/audit/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a. The caller sets ID.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.AuditLog) error {
	var meta any
	if len(a.Metadata) > 0 {
		meta = a.Metadata
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO audit_logs (id, org_id, user_id, action, resource, ip, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.OrgID, a.UserID, a.Action, a.Resource, a.IP, meta, a.CreatedAt)
	return errors.Wrap(err, "insert audit log")
}

// ListByOrg returns the org's audit logs, newest first.
func (r *PostgresRepository) ListByOrg(ctx context.Context, orgID int64, limit, offset int) ([]*domain.AuditLog, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, org_id, user_id, action, resource, ip, metadata, created_at
		FROM audit_logs WHERE org_id = $1 ORDER BY created_at DESC, id LIMIT $2 OFFSET $3`, orgID, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "list audit logs")
	}
	defer rows.Close()
	var out []*domain.AuditLog
	for rows.Next() {
		var (
			a         domain.AuditLog
			org, user sql.NullInt64
			meta      []byte
		)
		if err := rows.Scan(&a.ID, &org, &user, &a.Action, &a.Resource, &a.IP, &meta, &a.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan audit log")
		}
		if org.Valid {
			a.OrgID = &org.Int64
		}
		if user.Valid {
			a.UserID = &user.Int64
		}
		a.Metadata = meta
		out = append(out, &a)
	}
	return out, errors.Wrap(rows.Err(), "list audit logs")
}
