package domain

import (
	"strings"

	"f3-catalog/backend/internal/platform/domainerr"
	"f3-catalog/backend/internal/platform/valueobject"
)

// EventTagInput describes a new event tag.
type EventTagInput struct {
	Name                 string
	Color                string
	Description          string
	AllowGlobalDuplicate bool
}

// AddEventTag creates an org-owned event tag.
func (o *Org) AddEventTag(in EventTagInput) (EventTag, error) {
	name, err := valueobject.NewName("name", in.Name)
	if err != nil {
		return EventTag{}, err
	}
	if o.eventTagNameTaken(name.Key(), 0, in.AllowGlobalDuplicate) {
		return EventTag{}, domainerr.Invalid("name", "event tag %q already exists", name)
	}
	tag := EventTag{
		ID:          o.nextID(KindEventTag),
		OrgID:       o.orgID(),
		Name:        name.String(),
		Color:       strings.TrimSpace(in.Color),
		Description: strings.TrimSpace(in.Description),
		IsActive:    true,
	}
	o.eventTags[tag.ID] = tag
	o.record(EventTagCreated{EventTag: tag})
	return tag, nil
}

// CloneGlobalEventTag copies a global event tag into the org under a new id.
func (o *Org) CloneGlobalEventTag(globalID int64) (EventTag, error) {
	g, ok := o.global.EventTags[globalID]
	if !ok {
		return EventTag{}, domainerr.NotFound("global_event_tag", globalID)
	}
	return o.AddEventTag(EventTagInput{
		Name:                 g.Name,
		Color:                g.Color,
		Description:          g.Description,
		AllowGlobalDuplicate: true,
	})
}

// UpdateEventTag applies the supplied, changed fields.
func (o *Org) UpdateEventTag(id int64, in EventTagFields) error {
	cur, ok := o.eventTags[id]
	if !ok || !cur.IsActive {
		return domainerr.NotFound("event_tag", id)
	}
	next := cur
	var diff EventTagFields

	if in.Name != nil {
		name, err := valueobject.NewName("name", *in.Name)
		if err != nil {
			return err
		}
		if name.Key() != nameKey(cur.Name) && o.eventTagNameTaken(name.Key(), id, false) {
			return domainerr.Invalid("name", "event tag %q already exists", name)
		}
		s := name.String()
		diff.Name = setIfChanged(&next.Name, &s)
	}
	if in.Color != nil {
		s := strings.TrimSpace(*in.Color)
		diff.Color = setIfChanged(&next.Color, &s)
	}
	if in.Description != nil {
		s := strings.TrimSpace(*in.Description)
		diff.Description = setIfChanged(&next.Description, &s)
	}

	if diff == (EventTagFields{}) {
		return nil
	}
	o.eventTags[id] = next
	o.record(EventTagUpdated{ID: id, Fields: diff})
	return nil
}

// SoftDeleteEventTag deactivates an event tag, freeing its name.
func (o *Org) SoftDeleteEventTag(id int64) error {
	tag, ok := o.eventTags[id]
	if !ok || !tag.IsActive {
		return domainerr.NotFound("event_tag", id)
	}
	tag.IsActive = false
	o.eventTags[id] = tag
	o.record(EventTagDeleted{ID: id})
	return nil
}

func (o *Org) eventTagNameTaken(key string, exclude int64, skipGlobal bool) bool {
	for id, tag := range o.eventTags {
		if id != exclude && tag.IsActive && nameKey(tag.Name) == key {
			return true
		}
	}
	if skipGlobal {
		return false
	}
	_, ok := o.global.EventTagNames[key]
	return ok
}
