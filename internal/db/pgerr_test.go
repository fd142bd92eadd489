package db

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"f3-catalog/backend/internal/platform/domainerr"
)

func TestMapWriteError(t *testing.T) {
	require.NoError(t, MapWriteError(nil, "op"))

	err := MapWriteError(&pgconn.PgError{Code: "23505", ConstraintName: "uq_event_types_org_acronym"}, "insert")
	require.True(t, domainerr.IsValidation(err))
	var ve *domainerr.ValidationError
	require.True(t, errors.As(err, &ve))
	require.Equal(t, "acronym", ve.Field)

	require.True(t, domainerr.IsValidation(MapWriteError(&pgconn.PgError{Code: "23503"}, "insert")))

	cause := errors.New("connection reset")
	err = MapWriteError(cause, "insert event type")
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "insert event type")
}
