package domain

import "time"

// ChangeEvent is one applied org change record as published to the telemetry pipeline.
type ChangeEvent struct {
	OrgID     int64
	UserID    int64 // 0 when the command had no authenticated caller
	Kind      string
	Payload   []byte // JSON of the change record
	CreatedAt time.Time
}
