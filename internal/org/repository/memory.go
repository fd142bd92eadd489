package repository

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/go-faster/errors"

	"f3-catalog/backend/internal/org/domain"
	"f3-catalog/backend/internal/platform/domainerr"
)

type orgRow struct {
	ID       int64
	ParentID *int64
	Type     domain.OrgType
	Name     string
	Profile  domain.Profile
	Version  int64
	IsActive bool
}

type assignmentKey struct{ positionID, orgID, userID int64 }

// MemoryRepository is an in-process store with the same load/save semantics as PostgresRepository,
// including store-assigned ids and the version guard. It also serves as a catalog Source.
type MemoryRepository struct {
	mu          sync.Mutex
	orgs        map[int64]orgRow
	eventTypes  map[int64]domain.EventType
	eventTags   map[int64]domain.EventTag
	positions   map[int64]domain.Position
	locations   map[int64]domain.Location
	assignments map[assignmentKey]struct{}
	admins      map[int64][]int64
	lastID      map[domain.EntityKind]int64
	lastOrgID   int64

	catalog CatalogGetter
	seq     *domain.IDSequence
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		orgs:        make(map[int64]orgRow),
		eventTypes:  make(map[int64]domain.EventType),
		eventTags:   make(map[int64]domain.EventTag),
		positions:   make(map[int64]domain.Position),
		locations:   make(map[int64]domain.Location),
		assignments: make(map[assignmentKey]struct{}),
		admins:      make(map[int64][]int64),
		lastID:      make(map[domain.EntityKind]int64),
		seq:         domain.NewIDSequence(),
	}
}

// UseCatalog installs the catalog getter consulted by Get. Without one, Get builds the catalog from the
// store's own global rows.
func (m *MemoryRepository) UseCatalog(c CatalogGetter) { m.catalog = c }

// Sequence returns the provisional id sequence handed to loaded aggregates.
func (m *MemoryRepository) Sequence() *domain.IDSequence { return m.seq }

// CreateOrg inserts an org row with the given admins and returns its id.
func (m *MemoryRepository) CreateOrg(parentID *int64, typ domain.OrgType, name string, admins ...int64) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastOrgID++
	id := m.lastOrgID
	m.orgs[id] = orgRow{ID: id, ParentID: parentID, Type: typ, Name: name, IsActive: true}
	m.admins[id] = slices.Clone(admins)
	return id
}

// PutEventType stores a row as-is (OrgID nil for global rows) and returns its id.
func (m *MemoryRepository) PutEventType(et domain.EventType) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	et.ID = m.nextID(domain.KindEventType)
	m.eventTypes[et.ID] = et
	return et.ID
}

func (m *MemoryRepository) PutEventTag(t domain.EventTag) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = m.nextID(domain.KindEventTag)
	m.eventTags[t.ID] = t
	return t.ID
}

func (m *MemoryRepository) PutPosition(p domain.Position) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = m.nextID(domain.KindPosition)
	m.positions[p.ID] = p
	return p.ID
}

func (m *MemoryRepository) PutLocation(l domain.Location) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	l.ID = m.nextID(domain.KindLocation)
	m.locations[l.ID] = l
	return l.ID
}

func (m *MemoryRepository) nextID(kind domain.EntityKind) int64 {
	m.lastID[kind]++
	return m.lastID[kind]
}

func (m *MemoryRepository) LoadGlobalCatalog(context.Context) (domain.GlobalCatalog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.globalCatalogLocked(), nil
}

func (m *MemoryRepository) globalCatalogLocked() domain.GlobalCatalog {
	var (
		ets       []domain.EventType
		tags      []domain.EventTag
		positions []domain.Position
	)
	for _, et := range m.eventTypes {
		if et.OrgID == nil {
			ets = append(ets, et)
		}
	}
	for _, t := range m.eventTags {
		if t.OrgID == nil {
			tags = append(tags, t)
		}
	}
	for _, p := range m.positions {
		if p.OrgID == nil {
			positions = append(positions, p)
		}
	}
	return domain.NewGlobalCatalog(ets, tags, positions)
}

func (m *MemoryRepository) Get(ctx context.Context, id int64) (*domain.Org, error) {
	var catalog domain.GlobalCatalog
	if m.catalog != nil {
		c, err := m.catalog.Get(ctx)
		if err != nil {
			return nil, err
		}
		catalog = c
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.orgs[id]
	if !ok {
		return nil, domainerr.NotFound("org", id)
	}
	o := row.aggregate()
	o.UseSequence(m.seq)
	for _, et := range sortedByID(m.eventTypes, func(v domain.EventType) int64 { return v.ID }) {
		if ownedBy(et.OrgID, id) {
			o.HydrateEventType(et)
		}
	}
	for _, t := range sortedByID(m.eventTags, func(v domain.EventTag) int64 { return v.ID }) {
		if ownedBy(t.OrgID, id) {
			o.HydrateEventTag(t)
		}
	}
	for _, p := range sortedByID(m.positions, func(v domain.Position) int64 { return v.ID }) {
		if ownedBy(p.OrgID, id) {
			o.HydratePosition(p)
		}
	}
	for _, l := range m.locations {
		if l.OrgID == id {
			o.HydrateLocation(l)
		}
	}
	for k := range m.assignments {
		if k.orgID == id {
			o.HydrateAssignment(k.positionID, k.userID)
		}
	}
	for _, uid := range m.admins[id] {
		o.HydrateAdmin(uid)
	}

	if m.catalog == nil {
		catalog = m.globalCatalogLocked()
	}
	if row.ParentID != nil {
		var parentPositions []domain.Position
		for _, p := range m.positions {
			if ownedBy(p.OrgID, *row.ParentID) && p.IsActive {
				parentPositions = append(parentPositions, p)
			}
		}
		catalog = catalog.WithPositions(parentPositions)
	}
	o.SetGlobalCatalog(catalog)
	o.MarkPersisted()
	return o, nil
}

func (m *MemoryRepository) Save(_ context.Context, o *domain.Org) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.orgs[o.ID]
	if !ok {
		return domainerr.NotFound("org", o.ID)
	}
	if row.Version != o.PersistedVersion() {
		return &domainerr.ConflictError{Entity: "org", ID: fmt.Sprint(o.ID), Expected: o.PersistedVersion()}
	}
	row.Version = o.Version

	changes := o.PendingChanges()
	for i, c := range changes {
		res, err := m.applyLocked(&row, c)
		if err != nil {
			return err
		}
		if res == nil {
			continue
		}
		if moved, ok := o.Rebind(res.kind, res.provisional, res.id); ok {
			domain.RebindChanges(changes[i+1:], res.kind, moved.From, moved.To)
		}
		domain.RebindChanges(changes[i+1:], res.kind, res.provisional, res.id)
	}
	m.orgs[o.ID] = row
	o.DrainChanges()
	o.MarkPersisted()
	return nil
}

func (m *MemoryRepository) applyLocked(row *orgRow, c domain.Change) (*inserted, error) {
	orgID := row.ID
	owner := &orgID
	switch v := c.(type) {
	case domain.ProfileUpdated:
		f := v.Fields
		setString(&row.Name, f.Name)
		setString(&row.Profile.Description, f.Description)
		setString(&row.Profile.Website, f.Website)
		setString(&row.Profile.Email, f.Email)
		setString(&row.Profile.Twitter, f.Twitter)
		setString(&row.Profile.Facebook, f.Facebook)
		setString(&row.Profile.Instagram, f.Instagram)
		setString(&row.Profile.LogoURL, f.LogoURL)
	case domain.EventTypeCreated:
		et := v.EventType
		et.OrgID = owner
		et.ID = m.nextID(domain.KindEventType)
		m.eventTypes[et.ID] = et
		return &inserted{kind: domain.KindEventType, provisional: v.EventType.ID, id: et.ID}, nil
	case domain.EventTypeUpdated:
		et, ok := m.eventTypes[v.ID]
		if !ok || !ownedBy(et.OrgID, orgID) {
			return nil, nil
		}
		setString(&et.Name, v.Fields.Name)
		setString(&et.Acronym, v.Fields.Acronym)
		if v.Fields.Category != nil {
			et.Category = *v.Fields.Category
		}
		setString(&et.Description, v.Fields.Description)
		m.eventTypes[v.ID] = et
	case domain.EventTypeDeleted:
		if et, ok := m.eventTypes[v.ID]; ok && ownedBy(et.OrgID, orgID) {
			et.IsActive = false
			m.eventTypes[v.ID] = et
		}
	case domain.EventTagCreated:
		t := v.EventTag
		t.OrgID = owner
		t.ID = m.nextID(domain.KindEventTag)
		m.eventTags[t.ID] = t
		return &inserted{kind: domain.KindEventTag, provisional: v.EventTag.ID, id: t.ID}, nil
	case domain.EventTagUpdated:
		t, ok := m.eventTags[v.ID]
		if !ok || !ownedBy(t.OrgID, orgID) {
			return nil, nil
		}
		setString(&t.Name, v.Fields.Name)
		setString(&t.Color, v.Fields.Color)
		setString(&t.Description, v.Fields.Description)
		m.eventTags[v.ID] = t
	case domain.EventTagDeleted:
		if t, ok := m.eventTags[v.ID]; ok && ownedBy(t.OrgID, orgID) {
			t.IsActive = false
			m.eventTags[v.ID] = t
		}
	case domain.LocationCreated:
		l := v.Location
		l.OrgID = orgID
		l.ID = m.nextID(domain.KindLocation)
		m.locations[l.ID] = l
		return &inserted{kind: domain.KindLocation, provisional: v.Location.ID, id: l.ID}, nil
	case domain.LocationUpdated:
		l, ok := m.locations[v.ID]
		if !ok || l.OrgID != orgID {
			return nil, nil
		}
		f := v.Fields
		setString(&l.Name, f.Name)
		setString(&l.Description, f.Description)
		if f.Latitude != nil {
			l.Latitude = f.Latitude
		}
		if f.Longitude != nil {
			l.Longitude = f.Longitude
		}
		setString(&l.AddressStreet, f.AddressStreet)
		setString(&l.AddressStreet2, f.AddressStreet2)
		setString(&l.AddressCity, f.AddressCity)
		setString(&l.AddressState, f.AddressState)
		setString(&l.AddressZip, f.AddressZip)
		setString(&l.AddressCountry, f.AddressCountry)
		setString(&l.Email, f.Email)
		m.locations[v.ID] = l
	case domain.LocationDeleted:
		if l, ok := m.locations[v.ID]; ok && l.OrgID == orgID {
			l.IsActive = false
			m.locations[v.ID] = l
		}
	case domain.PositionCreated:
		p := v.Position
		p.OrgID = owner
		p.ID = m.nextID(domain.KindPosition)
		m.positions[p.ID] = p
		return &inserted{kind: domain.KindPosition, provisional: v.Position.ID, id: p.ID}, nil
	case domain.PositionUpdated:
		p, ok := m.positions[v.ID]
		if !ok || !ownedBy(p.OrgID, orgID) {
			return nil, nil
		}
		setString(&p.Name, v.Fields.Name)
		setString(&p.Description, v.Fields.Description)
		if v.Fields.Scope != nil {
			p.Scope = *v.Fields.Scope
		}
		m.positions[v.ID] = p
	case domain.PositionDeleted:
		if p, ok := m.positions[v.ID]; ok && ownedBy(p.OrgID, orgID) {
			p.IsActive = false
			m.positions[v.ID] = p
		}
	case domain.PositionAssigned:
		if _, ok := m.positions[v.PositionID]; !ok {
			return nil, domainerr.Invalid("", "referenced row does not exist (position %d)", v.PositionID)
		}
		m.assignments[assignmentKey{v.PositionID, orgID, v.UserID}] = struct{}{}
	case domain.PositionUnassigned:
		delete(m.assignments, assignmentKey{v.PositionID, orgID, v.UserID})
	case domain.AdminAssigned:
		if !slices.Contains(m.admins[orgID], v.UserID) {
			m.admins[orgID] = append(m.admins[orgID], v.UserID)
		}
	case domain.AdminRevoked:
		m.admins[orgID] = slices.DeleteFunc(m.admins[orgID], func(id int64) bool { return id == v.UserID })
	default:
		return nil, errors.Errorf("unhandled change record %T", c)
	}
	return nil, nil
}

func (m *MemoryRepository) ListChildren(_ context.Context, parentID int64, includeInactive bool) ([]*domain.Org, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Org
	for _, row := range m.orgs {
		if row.ParentID == nil || *row.ParentID != parentID || (!includeInactive && !row.IsActive) {
			continue
		}
		o := row.aggregate()
		o.MarkPersisted()
		out = append(out, o)
	}
	slices.SortFunc(out, func(a, b *domain.Org) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (m *MemoryRepository) AdminScope(_ context.Context, orgID int64) (*AdminScope, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.orgs[orgID]
	if !ok {
		return nil, nil
	}
	scope := &AdminScope{OrgID: orgID, OrgType: row.Type, ParentID: row.ParentID, Admins: slices.Clone(m.admins[orgID])}
	if row.ParentID != nil {
		scope.ParentAdmins = slices.Clone(m.admins[*row.ParentID])
	}
	return scope, nil
}

func (m *MemoryRepository) GetEventTypes(_ context.Context, orgID int64, opts ListOptions) ([]EventTypeView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []EventTypeView{}
	for _, et := range sortedByID(m.eventTypes, func(v domain.EventType) int64 { return v.ID }) {
		if visible(et.OrgID, orgID, opts) && (!opts.OnlyActive || et.IsActive) {
			out = append(out, eventTypeView(et))
		}
	}
	return out, nil
}

func (m *MemoryRepository) GetEventTags(_ context.Context, orgID int64, opts ListOptions) ([]EventTagView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []EventTagView{}
	for _, t := range sortedByID(m.eventTags, func(v domain.EventTag) int64 { return v.ID }) {
		if visible(t.OrgID, orgID, opts) && (!opts.OnlyActive || t.IsActive) {
			out = append(out, eventTagView(t))
		}
	}
	return out, nil
}

func (m *MemoryRepository) GetPositions(_ context.Context, orgID int64, opts ListOptions) ([]PositionView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.orgs[orgID]
	if !ok {
		return []PositionView{}, nil
	}
	out := []PositionView{}
	for _, p := range sortedByID(m.positions, func(v domain.Position) int64 { return v.ID }) {
		if opts.OnlyActive && !p.IsActive {
			continue
		}
		own := ownedBy(p.OrgID, orgID)
		inherited := opts.IncludeGlobal &&
			(p.OrgID == nil || (row.ParentID != nil && ownedBy(p.OrgID, *row.ParentID))) &&
			(p.Scope == domain.WildcardScope || p.Scope == domain.PositionScope(row.Type))
		if own || inherited {
			out = append(out, positionView(p))
		}
	}
	return out, nil
}

func (m *MemoryRepository) GetLocations(_ context.Context, orgID int64, opts ListOptions) ([]LocationView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []LocationView{}
	ids := make([]int64, 0, len(m.locations))
	for id := range m.locations {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		l := m.locations[id]
		if l.OrgID == orgID && (!opts.OnlyActive || l.IsActive) {
			out = append(out, locationView(l))
		}
	}
	return out, nil
}

func (r orgRow) aggregate() *domain.Org {
	o := domain.New(r.ID, r.ParentID, r.Type, r.Name)
	o.Profile = r.Profile
	o.Version = r.Version
	o.IsActive = r.IsActive
	return o
}

func ownedBy(owner *int64, orgID int64) bool { return owner != nil && *owner == orgID }

func visible(owner *int64, orgID int64, opts ListOptions) bool {
	return ownedBy(owner, orgID) || (opts.IncludeGlobal && owner == nil)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func sortedByID[T any](m map[int64]T, id func(T) int64) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	slices.SortFunc(out, func(a, b T) int { return cmp.Compare(id(a), id(b)) })
	return out
}
