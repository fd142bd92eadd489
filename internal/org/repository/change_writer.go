package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-faster/errors"

	"f3-catalog/backend/internal/db"
	"f3-catalog/backend/internal/org/domain"
)

// changeWriter maps change records to scoped writes inside a save transaction.
type changeWriter struct {
	tx          *sql.Tx
	org         *domain.Org
	adminRoleID *int64
}

type inserted struct {
	kind        domain.EntityKind
	provisional int64
	id          int64
}

// apply performs the write for c. For "created" records it returns the store-assigned id.
func (w *changeWriter) apply(ctx context.Context, c domain.Change) (*inserted, error) {
	orgID := w.org.ID
	switch v := c.(type) {
	case domain.ProfileUpdated:
		u := updateSet{}
		u.addString("name", v.Fields.Name)
		u.addString("description", v.Fields.Description)
		u.addString("website", v.Fields.Website)
		u.addString("email", v.Fields.Email)
		u.addString("twitter", v.Fields.Twitter)
		u.addString("facebook", v.Fields.Facebook)
		u.addString("instagram", v.Fields.Instagram)
		u.addString("logo_url", v.Fields.LogoURL)
		return nil, u.exec(ctx, w.tx, "orgs", orgID, nil)

	case domain.EventTypeCreated:
		et := v.EventType
		var id int64
		err := w.tx.QueryRowContext(ctx, `INSERT INTO event_types (org_id, name, acronym, category, description, is_active)
			VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
			orgID, et.Name, et.Acronym, string(et.Category), et.Description, et.IsActive).Scan(&id)
		if err != nil {
			return nil, db.MapWriteError(err, "insert event type")
		}
		return &inserted{kind: domain.KindEventType, provisional: et.ID, id: id}, nil
	case domain.EventTypeUpdated:
		u := updateSet{}
		u.addString("name", v.Fields.Name)
		u.addString("acronym", v.Fields.Acronym)
		if v.Fields.Category != nil {
			u.add("category", string(*v.Fields.Category))
		}
		u.addString("description", v.Fields.Description)
		return nil, u.exec(ctx, w.tx, "event_types", v.ID, &orgID)
	case domain.EventTypeDeleted:
		return nil, w.deactivate(ctx, "event_types", v.ID)

	case domain.EventTagCreated:
		t := v.EventTag
		var id int64
		err := w.tx.QueryRowContext(ctx, `INSERT INTO event_tags (org_id, name, color, description, is_active)
			VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			orgID, t.Name, t.Color, t.Description, t.IsActive).Scan(&id)
		if err != nil {
			return nil, db.MapWriteError(err, "insert event tag")
		}
		return &inserted{kind: domain.KindEventTag, provisional: t.ID, id: id}, nil
	case domain.EventTagUpdated:
		u := updateSet{}
		u.addString("name", v.Fields.Name)
		u.addString("color", v.Fields.Color)
		u.addString("description", v.Fields.Description)
		return nil, u.exec(ctx, w.tx, "event_tags", v.ID, &orgID)
	case domain.EventTagDeleted:
		return nil, w.deactivate(ctx, "event_tags", v.ID)

	case domain.LocationCreated:
		l := v.Location
		var id int64
		err := w.tx.QueryRowContext(ctx, `INSERT INTO locations (org_id, name, description, latitude, longitude,
			address_street, address_street2, address_city, address_state, address_zip, address_country, email, is_active)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13) RETURNING id`,
			orgID, l.Name, l.Description, l.Latitude, l.Longitude, l.AddressStreet, l.AddressStreet2,
			l.AddressCity, l.AddressState, l.AddressZip, l.AddressCountry, l.Email, l.IsActive).Scan(&id)
		if err != nil {
			return nil, db.MapWriteError(err, "insert location")
		}
		return &inserted{kind: domain.KindLocation, provisional: l.ID, id: id}, nil
	case domain.LocationUpdated:
		f := v.Fields
		u := updateSet{}
		u.addString("name", f.Name)
		u.addString("description", f.Description)
		if f.Latitude != nil {
			u.add("latitude", *f.Latitude)
		}
		if f.Longitude != nil {
			u.add("longitude", *f.Longitude)
		}
		u.addString("address_street", f.AddressStreet)
		u.addString("address_street2", f.AddressStreet2)
		u.addString("address_city", f.AddressCity)
		u.addString("address_state", f.AddressState)
		u.addString("address_zip", f.AddressZip)
		u.addString("address_country", f.AddressCountry)
		u.addString("email", f.Email)
		return nil, u.exec(ctx, w.tx, "locations", v.ID, &orgID)
	case domain.LocationDeleted:
		return nil, w.deactivate(ctx, "locations", v.ID)

	case domain.PositionCreated:
		p := v.Position
		var id int64
		err := w.tx.QueryRowContext(ctx, `INSERT INTO positions (org_id, name, description, org_type, is_active)
			VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			orgID, p.Name, p.Description, scopeValue(p.Scope), p.IsActive).Scan(&id)
		if err != nil {
			return nil, db.MapWriteError(err, "insert position")
		}
		return &inserted{kind: domain.KindPosition, provisional: p.ID, id: id}, nil
	case domain.PositionUpdated:
		u := updateSet{}
		u.addString("name", v.Fields.Name)
		u.addString("description", v.Fields.Description)
		if v.Fields.Scope != nil {
			u.add("org_type", scopeValue(*v.Fields.Scope))
		}
		return nil, u.exec(ctx, w.tx, "positions", v.ID, &orgID)
	case domain.PositionDeleted:
		return nil, w.deactivate(ctx, "positions", v.ID)

	case domain.PositionAssigned:
		_, err := w.tx.ExecContext(ctx, `INSERT INTO positions_x_orgs_x_users (position_id, org_id, user_id)
			VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`, v.PositionID, orgID, v.UserID)
		return nil, db.MapWriteError(err, "assign position")
	case domain.PositionUnassigned:
		_, err := w.tx.ExecContext(ctx, `DELETE FROM positions_x_orgs_x_users
			WHERE position_id = $1 AND org_id = $2 AND user_id = $3`, v.PositionID, orgID, v.UserID)
		return nil, db.MapWriteError(err, "unassign position")

	case domain.AdminAssigned:
		roleID, err := w.adminRole(ctx)
		if err != nil {
			return nil, err
		}
		_, err = w.tx.ExecContext(ctx, `INSERT INTO roles_x_users_x_org (role_id, user_id, org_id)
			VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`, roleID, v.UserID, orgID)
		return nil, db.MapWriteError(err, "assign admin")
	case domain.AdminRevoked:
		roleID, err := w.adminRole(ctx)
		if err != nil {
			return nil, err
		}
		_, err = w.tx.ExecContext(ctx, `DELETE FROM roles_x_users_x_org
			WHERE role_id = $1 AND user_id = $2 AND org_id = $3`, roleID, v.UserID, orgID)
		return nil, db.MapWriteError(err, "revoke admin")

	default:
		return nil, errors.Errorf("unhandled change record %T", c)
	}
}

func (w *changeWriter) deactivate(ctx context.Context, table string, id int64) error {
	_, err := w.tx.ExecContext(ctx,
		`UPDATE `+table+` SET is_active = false, updated_at = now() WHERE id = $1 AND org_id = $2`, id, w.org.ID)
	return db.MapWriteError(err, "deactivate "+table)
}

// adminRole resolves the admin role id by name once per save.
func (w *changeWriter) adminRole(ctx context.Context) (int64, error) {
	if w.adminRoleID != nil {
		return *w.adminRoleID, nil
	}
	var id int64
	if err := w.tx.QueryRowContext(ctx, `SELECT id FROM roles WHERE name = $1`, AdminRoleName).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, errors.Errorf("role %q is not seeded", AdminRoleName)
		}
		return 0, errors.Wrap(err, "resolve admin role")
	}
	w.adminRoleID = &id
	return id, nil
}

// updateSet accumulates "col = $n" assignments for a column update.
type updateSet struct {
	cols []string
	args []any
}

func (u *updateSet) add(col string, v any) {
	u.args = append(u.args, v)
	u.cols = append(u.cols, fmt.Sprintf("%s = $%d", col, len(u.args)))
}

func (u *updateSet) addString(col string, v *string) {
	if v != nil {
		u.add(col, *v)
	}
}

// exec updates row id of table, scoped to orgID when given. An empty set is a no-op.
func (u *updateSet) exec(ctx context.Context, tx *sql.Tx, table string, id int64, orgID *int64) error {
	if len(u.cols) == 0 {
		return nil
	}
	args := append(u.args, id)
	q := fmt.Sprintf(`UPDATE %s SET %s, updated_at = now() WHERE id = $%d`, table, strings.Join(u.cols, ", "), len(args))
	if orgID != nil {
		args = append(args, *orgID)
		q += fmt.Sprintf(` AND org_id = $%d`, len(args))
	}
	_, err := tx.ExecContext(ctx, q, args...)
	return db.MapWriteError(err, "update "+table)
}
