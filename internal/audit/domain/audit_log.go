package domain

import "time"

// AuditLog is one recorded mutation. OrgID and UserID are nil for calls without a resolved target or caller.
type AuditLog struct {
	ID        string
	OrgID     *int64
	UserID    *int64
	Action    string
	Resource  string
	IP        string
	Metadata  []byte
	CreatedAt time.Time
}
