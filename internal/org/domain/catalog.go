package domain

// GlobalCatalog is the read-only snapshot of reference data that org-local names must not collide with.
// Name sets hold normalized keys. The zero value is an empty catalog.
type GlobalCatalog struct {
	EventTypeNames       map[string]struct{}
	EventTypeAcronyms    map[string]struct{}
	EventTagNames        map[string]struct{}
	PositionNamesByScope map[PositionScope]map[string]struct{}
	EventTypes           map[int64]EventType
	EventTags            map[int64]EventTag
	Positions            map[int64]Position
}

// NewGlobalCatalog builds a snapshot from global rows. Inactive rows are skipped.
func NewGlobalCatalog(eventTypes []EventType, eventTags []EventTag, positions []Position) GlobalCatalog {
	c := GlobalCatalog{
		EventTypeNames:       make(map[string]struct{}),
		EventTypeAcronyms:    make(map[string]struct{}),
		EventTagNames:        make(map[string]struct{}),
		PositionNamesByScope: make(map[PositionScope]map[string]struct{}),
		EventTypes:           make(map[int64]EventType),
		EventTags:            make(map[int64]EventTag),
		Positions:            make(map[int64]Position),
	}
	for _, et := range eventTypes {
		if !et.IsActive {
			continue
		}
		c.EventTypes[et.ID] = et
		c.EventTypeNames[nameKey(et.Name)] = struct{}{}
		c.EventTypeAcronyms[acronymKey(et.Acronym)] = struct{}{}
	}
	for _, tag := range eventTags {
		if !tag.IsActive {
			continue
		}
		c.EventTags[tag.ID] = tag
		c.EventTagNames[nameKey(tag.Name)] = struct{}{}
	}
	c.addPositions(positions)
	return c
}

// WithPositions returns a copy of c that also contains positions (e.g. a parent org's custom positions).
func (c GlobalCatalog) WithPositions(positions []Position) GlobalCatalog {
	out := c.clone()
	out.addPositions(positions)
	return out
}

func (c *GlobalCatalog) addPositions(positions []Position) {
	for _, p := range positions {
		if !p.IsActive {
			continue
		}
		c.Positions[p.ID] = p
		names, ok := c.PositionNamesByScope[p.Scope]
		if !ok {
			names = make(map[string]struct{})
			c.PositionNamesByScope[p.Scope] = names
		}
		names[nameKey(p.Name)] = struct{}{}
	}
}

// PositionNameTaken reports whether key collides with a catalog position visible from scope.
func (c GlobalCatalog) PositionNameTaken(key string, scope PositionScope) bool {
	return positionNameIndex(c.PositionNamesByScope).taken(key, scope)
}

func (c GlobalCatalog) clone() GlobalCatalog {
	out := NewGlobalCatalog(nil, nil, nil)
	for k := range c.EventTypeNames {
		out.EventTypeNames[k] = struct{}{}
	}
	for k := range c.EventTypeAcronyms {
		out.EventTypeAcronyms[k] = struct{}{}
	}
	for k := range c.EventTagNames {
		out.EventTagNames[k] = struct{}{}
	}
	for scope, names := range c.PositionNamesByScope {
		cp := make(map[string]struct{}, len(names))
		for k := range names {
			cp[k] = struct{}{}
		}
		out.PositionNamesByScope[scope] = cp
	}
	for id, v := range c.EventTypes {
		out.EventTypes[id] = v
	}
	for id, v := range c.EventTags {
		out.EventTags[id] = v
	}
	for id, v := range c.Positions {
		out.Positions[id] = v
	}
	return out
}

// positionNameIndex maps scope to normalized names.
type positionNameIndex map[PositionScope]map[string]struct{}

// taken applies the wildcard rule: the wildcard scope sees every scope, a specific scope sees itself
// plus the wildcard, and two different specific scopes never see each other.
func (idx positionNameIndex) taken(key string, scope PositionScope) bool {
	if scope == WildcardScope {
		for _, names := range idx {
			if _, ok := names[key]; ok {
				return true
			}
		}
		return false
	}
	if _, ok := idx[WildcardScope][key]; ok {
		return true
	}
	_, ok := idx[scope][key]
	return ok
}

func (idx positionNameIndex) add(key string, scope PositionScope) {
	names, ok := idx[scope]
	if !ok {
		names = make(map[string]struct{})
		idx[scope] = names
	}
	names[key] = struct{}{}
}
