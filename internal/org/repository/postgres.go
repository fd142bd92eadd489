package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-faster/errors"

	"f3-catalog/backend/internal/org/domain"
	"f3-catalog/backend/internal/platform/domainerr"
)

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type PostgresRepository struct {
	db      *sql.DB
	catalog CatalogGetter
	seq     *domain.IDSequence
}

// NewPostgresRepository returns an org repository backed by db. catalog may be nil, in which case loaded
// aggregates only see the parent org's positions as their catalog.
func NewPostgresRepository(sqlDB *sql.DB, catalog CatalogGetter) *PostgresRepository {
	return &PostgresRepository{db: sqlDB, catalog: catalog, seq: domain.ProcessSequence()}
}

const orgColumns = `id, parent_id, org_type, name, description, website, email, twitter, facebook, instagram, logo_url, version, is_active`

func scanOrg(row interface{ Scan(...any) error }) (*domain.Org, error) {
	var (
		id       int64
		parentID sql.NullInt64
		orgType  string
		name     string
		p        domain.Profile
		version  int64
		active   bool
	)
	if err := row.Scan(&id, &parentID, &orgType, &name, &p.Description, &p.Website, &p.Email,
		&p.Twitter, &p.Facebook, &p.Instagram, &p.LogoURL, &version, &active); err != nil {
		return nil, err
	}
	o := domain.New(id, nullInt64Ptr(parentID), domain.OrgType(orgType), name)
	o.Profile = p
	o.Version = version
	o.IsActive = active
	return o, nil
}

// Get loads the org row and one query per owned collection.
func (r *PostgresRepository) Get(ctx context.Context, id int64) (*domain.Org, error) {
	o, err := scanOrg(r.db.QueryRowContext(ctx, `SELECT `+orgColumns+` FROM orgs WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domainerr.NotFound("org", id)
		}
		return nil, errors.Wrap(err, "load org")
	}
	o.UseSequence(r.seq)

	ets, err := loadEventTypes(ctx, r.db, `WHERE org_id = $1`, id)
	if err != nil {
		return nil, err
	}
	for _, et := range ets {
		o.HydrateEventType(et)
	}
	tags, err := loadEventTags(ctx, r.db, `WHERE org_id = $1`, id)
	if err != nil {
		return nil, err
	}
	for _, t := range tags {
		o.HydrateEventTag(t)
	}
	locs, err := loadLocations(ctx, r.db, `WHERE org_id = $1`, id)
	if err != nil {
		return nil, err
	}
	for _, l := range locs {
		o.HydrateLocation(l)
	}
	positions, err := loadPositions(ctx, r.db, `WHERE org_id = $1`, id)
	if err != nil {
		return nil, err
	}
	for _, p := range positions {
		o.HydratePosition(p)
	}
	if err := r.loadAssignments(ctx, o); err != nil {
		return nil, err
	}
	admins, err := loadAdmins(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	for _, uid := range admins {
		o.HydrateAdmin(uid)
	}

	catalog := domain.NewGlobalCatalog(nil, nil, nil)
	if r.catalog != nil {
		if catalog, err = r.catalog.Get(ctx); err != nil {
			return nil, errors.Wrap(err, "load global catalog")
		}
	}
	if o.ParentID != nil {
		parentPositions, err := loadPositions(ctx, r.db, `WHERE org_id = $1 AND is_active`, *o.ParentID)
		if err != nil {
			return nil, err
		}
		catalog = catalog.WithPositions(parentPositions)
	}
	o.SetGlobalCatalog(catalog)
	o.MarkPersisted()
	return o, nil
}

func (r *PostgresRepository) loadAssignments(ctx context.Context, o *domain.Org) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT position_id, user_id FROM positions_x_orgs_x_users WHERE org_id = $1 ORDER BY position_id, user_id`, o.ID)
	if err != nil {
		return errors.Wrap(err, "load position assignments")
	}
	defer rows.Close()
	for rows.Next() {
		var positionID, userID int64
		if err := rows.Scan(&positionID, &userID); err != nil {
			return errors.Wrap(err, "scan position assignment")
		}
		o.HydrateAssignment(positionID, userID)
	}
	return errors.Wrap(rows.Err(), "load position assignments")
}

func loadAdmins(ctx context.Context, q querier, orgID int64) ([]int64, error) {
	rows, err := q.QueryContext(ctx, `SELECT rxo.user_id FROM roles_x_users_x_org rxo
		JOIN roles r ON r.id = rxo.role_id
		WHERE rxo.org_id = $1 AND r.name = $2
		ORDER BY rxo.created_at, rxo.user_id`, orgID, AdminRoleName)
	if err != nil {
		return nil, errors.Wrap(err, "load admins")
	}
	defer rows.Close()
	var out []int64
	for rows.Next() {
		var uid int64
		if err := rows.Scan(&uid); err != nil {
			return nil, errors.Wrap(err, "scan admin")
		}
		out = append(out, uid)
	}
	return out, errors.Wrap(rows.Err(), "load admins")
}

// Save applies the pending change records in creation order inside one transaction. The org row's
// version is compared against the loaded version first; a mismatch rolls back with a ConflictError.
// The queue is cleared only after commit.
func (r *PostgresRepository) Save(ctx context.Context, o *domain.Org) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin save")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`UPDATE orgs SET version = $1, updated_at = now() WHERE id = $2 AND version = $3`,
		o.Version, o.ID, o.PersistedVersion())
	if err != nil {
		return errors.Wrap(err, "bump org version")
	}
	if n, err := res.RowsAffected(); err != nil {
		return errors.Wrap(err, "bump org version")
	} else if n == 0 {
		return &domainerr.ConflictError{Entity: "org", ID: fmt.Sprint(o.ID), Expected: o.PersistedVersion()}
	}

	w := &changeWriter{tx: tx, org: o}
	changes := o.PendingChanges()
	for i, c := range changes {
		inserted, err := w.apply(ctx, c)
		if err != nil {
			return err
		}
		if inserted == nil {
			continue
		}
		if moved, ok := o.Rebind(inserted.kind, inserted.provisional, inserted.id); ok {
			domain.RebindChanges(changes[i+1:], inserted.kind, moved.From, moved.To)
		}
		domain.RebindChanges(changes[i+1:], inserted.kind, inserted.provisional, inserted.id)
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit save")
	}
	committed = true
	o.DrainChanges()
	o.MarkPersisted()
	return nil
}

// ListChildren returns child orgs ordered by id.
func (r *PostgresRepository) ListChildren(ctx context.Context, parentID int64, includeInactive bool) ([]*domain.Org, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+orgColumns+` FROM orgs
		WHERE parent_id = $1 AND ($2::boolean OR is_active)
		ORDER BY id`, parentID, includeInactive)
	if err != nil {
		return nil, errors.Wrap(err, "list child orgs")
	}
	defer rows.Close()
	var out []*domain.Org
	for rows.Next() {
		o, err := scanOrg(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan child org")
		}
		o.MarkPersisted()
		out = append(out, o)
	}
	return out, errors.Wrap(rows.Err(), "list child orgs")
}

// AdminScope returns nil, nil when the org does not exist.
func (r *PostgresRepository) AdminScope(ctx context.Context, orgID int64) (*AdminScope, error) {
	var (
		orgType  string
		parentID sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, `SELECT org_type, parent_id FROM orgs WHERE id = $1`, orgID).Scan(&orgType, &parentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "load org scope")
	}
	scope := &AdminScope{OrgID: orgID, OrgType: domain.OrgType(orgType), ParentID: nullInt64Ptr(parentID)}
	if scope.Admins, err = loadAdmins(ctx, r.db, orgID); err != nil {
		return nil, err
	}
	if scope.ParentID != nil {
		if scope.ParentAdmins, err = loadAdmins(ctx, r.db, *scope.ParentID); err != nil {
			return nil, err
		}
	}
	return scope, nil
}

func (r *PostgresRepository) GetEventTypes(ctx context.Context, orgID int64, opts ListOptions) ([]EventTypeView, error) {
	ets, err := loadEventTypes(ctx, r.db,
		`WHERE (org_id = $1 OR ($2::boolean AND org_id IS NULL)) AND (NOT $3::boolean OR is_active)`,
		orgID, opts.IncludeGlobal, opts.OnlyActive)
	if err != nil {
		return nil, err
	}
	out := make([]EventTypeView, 0, len(ets))
	for _, et := range ets {
		out = append(out, eventTypeView(et))
	}
	return out, nil
}

func (r *PostgresRepository) GetEventTags(ctx context.Context, orgID int64, opts ListOptions) ([]EventTagView, error) {
	tags, err := loadEventTags(ctx, r.db,
		`WHERE (org_id = $1 OR ($2::boolean AND org_id IS NULL)) AND (NOT $3::boolean OR is_active)`,
		orgID, opts.IncludeGlobal, opts.OnlyActive)
	if err != nil {
		return nil, err
	}
	out := make([]EventTagView, 0, len(tags))
	for _, t := range tags {
		out = append(out, eventTagView(t))
	}
	return out, nil
}

// GetPositions lists the org's own positions and, with IncludeGlobal, the global and parent-org positions
// whose scope applies to the org's type.
func (r *PostgresRepository) GetPositions(ctx context.Context, orgID int64, opts ListOptions) ([]PositionView, error) {
	positions, err := loadPositions(ctx, r.db, `WHERE (org_id = $1 OR ($2::boolean
			AND (org_id IS NULL OR org_id = (SELECT parent_id FROM orgs WHERE id = $1))
			AND (org_type IS NULL OR org_type = (SELECT org_type FROM orgs WHERE id = $1))))
		AND (NOT $3::boolean OR is_active)`,
		orgID, opts.IncludeGlobal, opts.OnlyActive)
	if err != nil {
		return nil, err
	}
	out := make([]PositionView, 0, len(positions))
	for _, p := range positions {
		out = append(out, positionView(p))
	}
	return out, nil
}

func (r *PostgresRepository) GetLocations(ctx context.Context, orgID int64, opts ListOptions) ([]LocationView, error) {
	locs, err := loadLocations(ctx, r.db, `WHERE org_id = $1 AND (NOT $2::boolean OR is_active)`, orgID, opts.OnlyActive)
	if err != nil {
		return nil, err
	}
	out := make([]LocationView, 0, len(locs))
	for _, l := range locs {
		out = append(out, locationView(l))
	}
	return out, nil
}

func loadEventTypes(ctx context.Context, q querier, where string, args ...any) ([]domain.EventType, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, org_id, name, acronym, category, description, is_active
		FROM event_types `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, errors.Wrap(err, "load event types")
	}
	defer rows.Close()
	var out []domain.EventType
	for rows.Next() {
		var (
			et       domain.EventType
			orgID    sql.NullInt64
			category string
		)
		if err := rows.Scan(&et.ID, &orgID, &et.Name, &et.Acronym, &category, &et.Description, &et.IsActive); err != nil {
			return nil, errors.Wrap(err, "scan event type")
		}
		et.OrgID = nullInt64Ptr(orgID)
		et.Category = domain.EventCategory(category)
		out = append(out, et)
	}
	return out, errors.Wrap(rows.Err(), "load event types")
}

func loadEventTags(ctx context.Context, q querier, where string, args ...any) ([]domain.EventTag, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, org_id, name, color, description, is_active
		FROM event_tags `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, errors.Wrap(err, "load event tags")
	}
	defer rows.Close()
	var out []domain.EventTag
	for rows.Next() {
		var (
			t     domain.EventTag
			orgID sql.NullInt64
		)
		if err := rows.Scan(&t.ID, &orgID, &t.Name, &t.Color, &t.Description, &t.IsActive); err != nil {
			return nil, errors.Wrap(err, "scan event tag")
		}
		t.OrgID = nullInt64Ptr(orgID)
		out = append(out, t)
	}
	return out, errors.Wrap(rows.Err(), "load event tags")
}

func loadPositions(ctx context.Context, q querier, where string, args ...any) ([]domain.Position, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, org_id, name, description, org_type, is_active
		FROM positions `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, errors.Wrap(err, "load positions")
	}
	defer rows.Close()
	var out []domain.Position
	for rows.Next() {
		var (
			p       domain.Position
			orgID   sql.NullInt64
			orgType sql.NullString
		)
		if err := rows.Scan(&p.ID, &orgID, &p.Name, &p.Description, &orgType, &p.IsActive); err != nil {
			return nil, errors.Wrap(err, "scan position")
		}
		p.OrgID = nullInt64Ptr(orgID)
		p.Scope = domain.PositionScope(orgType.String)
		out = append(out, p)
	}
	return out, errors.Wrap(rows.Err(), "load positions")
}

func loadLocations(ctx context.Context, q querier, where string, args ...any) ([]domain.Location, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, org_id, name, description, latitude, longitude,
		address_street, address_street2, address_city, address_state, address_zip, address_country, email, is_active
		FROM locations `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, errors.Wrap(err, "load locations")
	}
	defer rows.Close()
	var out []domain.Location
	for rows.Next() {
		var (
			l        domain.Location
			lat, lng sql.NullFloat64
		)
		if err := rows.Scan(&l.ID, &l.OrgID, &l.Name, &l.Description, &lat, &lng,
			&l.AddressStreet, &l.AddressStreet2, &l.AddressCity, &l.AddressState, &l.AddressZip,
			&l.AddressCountry, &l.Email, &l.IsActive); err != nil {
			return nil, errors.Wrap(err, "scan location")
		}
		l.Latitude = nullFloat64Ptr(lat)
		l.Longitude = nullFloat64Ptr(lng)
		out = append(out, l)
	}
	return out, errors.Wrap(rows.Err(), "load locations")
}

func nullInt64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}

func nullFloat64Ptr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}

func scopeValue(s domain.PositionScope) sql.NullString {
	return sql.NullString{String: string(s), Valid: s != domain.WildcardScope}
}
