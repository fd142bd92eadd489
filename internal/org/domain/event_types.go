package domain

import (
	"strings"

	"f3-catalog/backend/internal/platform/domainerr"
	"f3-catalog/backend/internal/platform/valueobject"
)

// EventTypeInput describes a new event type. A blank Acronym defaults to the first two letters of Name.
type EventTypeInput struct {
	Name        string
	Acronym     string
	Category    EventCategory
	Description string
	// AllowGlobalDuplicate skips the global half of the uniqueness checks (clone from global).
	AllowGlobalDuplicate bool
}

// AddEventType creates an org-owned event type.
func (o *Org) AddEventType(in EventTypeInput) (EventType, error) {
	name, err := valueobject.NewName("name", in.Name)
	if err != nil {
		return EventType{}, err
	}
	acronym, err := valueobject.NewAcronym(in.Acronym, name)
	if err != nil {
		return EventType{}, err
	}
	category, err := ParseEventCategory(string(in.Category))
	if err != nil {
		return EventType{}, err
	}
	if o.eventTypeNameTaken(name.Key(), 0, in.AllowGlobalDuplicate) {
		return EventType{}, domainerr.Invalid("name", "event type %q already exists", name)
	}
	if o.eventTypeAcronymTaken(acronym.Key(), 0, in.AllowGlobalDuplicate) {
		return EventType{}, domainerr.Invalid("acronym", "acronym %q already in use", acronym)
	}
	et := EventType{
		ID:          o.nextID(KindEventType),
		OrgID:       o.orgID(),
		Name:        name.String(),
		Acronym:     acronym.String(),
		Category:    category,
		Description: strings.TrimSpace(in.Description),
		IsActive:    true,
	}
	o.eventTypes[et.ID] = et
	o.record(EventTypeCreated{EventType: et})
	return et, nil
}

// CloneGlobalEventType copies a global event type into the org under a new id.
func (o *Org) CloneGlobalEventType(globalID int64) (EventType, error) {
	g, ok := o.global.EventTypes[globalID]
	if !ok {
		return EventType{}, domainerr.NotFound("global_event_type", globalID)
	}
	return o.AddEventType(EventTypeInput{
		Name:                 g.Name,
		Acronym:              g.Acronym,
		Category:             g.Category,
		Description:          g.Description,
		AllowGlobalDuplicate: true,
	})
}

// UpdateEventType applies the supplied fields. Only fields that actually change are recorded; a call
// that changes nothing records nothing.
func (o *Org) UpdateEventType(id int64, in EventTypeFields) error {
	cur, ok := o.eventTypes[id]
	if !ok || !cur.IsActive {
		return domainerr.NotFound("event_type", id)
	}
	next := cur
	var diff EventTypeFields

	if in.Name != nil {
		name, err := valueobject.NewName("name", *in.Name)
		if err != nil {
			return err
		}
		if name.Key() != nameKey(cur.Name) && o.eventTypeNameTaken(name.Key(), id, false) {
			return domainerr.Invalid("name", "event type %q already exists", name)
		}
		s := name.String()
		diff.Name = setIfChanged(&next.Name, &s)
	}
	if in.Acronym != nil {
		name, err := valueobject.NewName("name", next.Name)
		if err != nil {
			return err
		}
		acronym, err := valueobject.NewAcronym(*in.Acronym, name)
		if err != nil {
			return err
		}
		if acronym.Key() != acronymKey(cur.Acronym) && o.eventTypeAcronymTaken(acronym.Key(), id, false) {
			return domainerr.Invalid("acronym", "acronym %q already in use", acronym)
		}
		s := acronym.String()
		diff.Acronym = setIfChanged(&next.Acronym, &s)
	}
	if in.Category != nil {
		category, err := ParseEventCategory(string(*in.Category))
		if err != nil {
			return err
		}
		diff.Category = setIfChanged(&next.Category, &category)
	}
	if in.Description != nil {
		s := strings.TrimSpace(*in.Description)
		diff.Description = setIfChanged(&next.Description, &s)
	}

	if diff == (EventTypeFields{}) {
		return nil
	}
	o.eventTypes[id] = next
	o.record(EventTypeUpdated{ID: id, Fields: diff})
	return nil
}

// SoftDeleteEventType deactivates an event type, freeing its name and acronym.
func (o *Org) SoftDeleteEventType(id int64) error {
	et, ok := o.eventTypes[id]
	if !ok || !et.IsActive {
		return domainerr.NotFound("event_type", id)
	}
	et.IsActive = false
	o.eventTypes[id] = et
	o.record(EventTypeDeleted{ID: id})
	return nil
}

func (o *Org) eventTypeNameTaken(key string, exclude int64, skipGlobal bool) bool {
	for id, et := range o.eventTypes {
		if id != exclude && et.IsActive && nameKey(et.Name) == key {
			return true
		}
	}
	if skipGlobal {
		return false
	}
	_, ok := o.global.EventTypeNames[key]
	return ok
}

func (o *Org) eventTypeAcronymTaken(key string, exclude int64, skipGlobal bool) bool {
	for id, et := range o.eventTypes {
		if id != exclude && et.IsActive && acronymKey(et.Acronym) == key {
			return true
		}
	}
	if skipGlobal {
		return false
	}
	_, ok := o.global.EventTypeAcronyms[key]
	return ok
}
