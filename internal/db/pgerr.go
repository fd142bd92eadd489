package db

import (
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgconn"

	"f3-catalog/backend/internal/platform/domainerr"
)

// MapWriteError converts constraint violations raised by Postgres into domain errors and wraps
// everything else with op.
func MapWriteError(err error, op string) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			field := "name"
			if strings.Contains(pgErr.ConstraintName, "acronym") {
				field = "acronym"
			}
			return domainerr.Invalid(field, "already exists (%s)", pgErr.ConstraintName)
		case "23503": // foreign_key_violation
			return domainerr.Invalid("", "referenced row does not exist (%s)", pgErr.ConstraintName)
		case "23514": // check_violation
			return domainerr.Invalid("", "value rejected by %s", pgErr.ConstraintName)
		}
	}
	return errors.Wrap(err, op)
}
