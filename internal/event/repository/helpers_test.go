package repository

import "github.com/jackc/pgx/v5/pgconn"

func ptr[T any](v T) *T { return &v }

var pgForeignKey = pgconn.PgError{Code: "23503", ConstraintName: "event_series_location_id_fkey"}
