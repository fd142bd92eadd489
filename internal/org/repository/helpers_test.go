package repository

import "github.com/jackc/pgx/v5/pgconn"

func ptr[T any](v T) *T { return &v }

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}
