package domain

import (
	"strings"

	"f3-catalog/backend/internal/platform/domainerr"
	"f3-catalog/backend/internal/platform/valueobject"
)

// LocationInput describes a new location.
type LocationInput struct {
	Name           string
	Description    string
	Latitude       *float64
	Longitude      *float64
	AddressStreet  string
	AddressStreet2 string
	AddressCity    string
	AddressState   string
	AddressZip     string
	AddressCountry string
	Email          string
}

// AddLocation creates a location. Names are unique among the org's active, named locations.
func (o *Org) AddLocation(in LocationInput) (Location, error) {
	name, err := valueobject.NewName("name", in.Name)
	if err != nil {
		return Location{}, err
	}
	if err := validateCoordinates(in.Latitude, in.Longitude); err != nil {
		return Location{}, err
	}
	if o.locationNameTaken(name.Key(), 0) {
		return Location{}, domainerr.Invalid("name", "location %q already exists", name)
	}
	l := Location{
		ID:             o.nextID(KindLocation),
		OrgID:          o.ID,
		Name:           name.String(),
		Description:    strings.TrimSpace(in.Description),
		Latitude:       in.Latitude,
		Longitude:      in.Longitude,
		AddressStreet:  strings.TrimSpace(in.AddressStreet),
		AddressStreet2: strings.TrimSpace(in.AddressStreet2),
		AddressCity:    strings.TrimSpace(in.AddressCity),
		AddressState:   strings.TrimSpace(in.AddressState),
		AddressZip:     strings.TrimSpace(in.AddressZip),
		AddressCountry: strings.TrimSpace(in.AddressCountry),
		Email:          strings.TrimSpace(in.Email),
		IsActive:       true,
	}
	o.locations[l.ID] = l
	o.record(LocationCreated{Location: l})
	return l, nil
}

// UpdateLocation applies the supplied, changed fields. Renaming a legacy blank-named location puts it
// back into the uniqueness index.
func (o *Org) UpdateLocation(id int64, in LocationFields) error {
	cur, ok := o.locations[id]
	if !ok || !cur.IsActive {
		return domainerr.NotFound("location", id)
	}
	next := cur
	var diff LocationFields

	if in.Name != nil {
		name, err := valueobject.NewName("name", *in.Name)
		if err != nil {
			return err
		}
		if name.Key() != nameKey(cur.Name) && o.locationNameTaken(name.Key(), id) {
			return domainerr.Invalid("name", "location %q already exists", name)
		}
		s := name.String()
		diff.Name = setIfChanged(&next.Name, &s)
	}
	lat, lng := next.Latitude, next.Longitude
	if in.Latitude != nil {
		lat = in.Latitude
	}
	if in.Longitude != nil {
		lng = in.Longitude
	}
	if err := validateCoordinates(lat, lng); err != nil {
		return err
	}
	diff.Latitude = changedFloat(&next.Latitude, in.Latitude)
	diff.Longitude = changedFloat(&next.Longitude, in.Longitude)

	text := []struct {
		in   *string
		dst  *string
		diff **string
	}{
		{in.Description, &next.Description, &diff.Description},
		{in.AddressStreet, &next.AddressStreet, &diff.AddressStreet},
		{in.AddressStreet2, &next.AddressStreet2, &diff.AddressStreet2},
		{in.AddressCity, &next.AddressCity, &diff.AddressCity},
		{in.AddressState, &next.AddressState, &diff.AddressState},
		{in.AddressZip, &next.AddressZip, &diff.AddressZip},
		{in.AddressCountry, &next.AddressCountry, &diff.AddressCountry},
		{in.Email, &next.Email, &diff.Email},
	}
	for _, f := range text {
		if f.in == nil {
			continue
		}
		s := strings.TrimSpace(*f.in)
		*f.diff = setIfChanged(f.dst, &s)
	}

	if diff == (LocationFields{}) {
		return nil
	}
	o.locations[id] = next
	o.record(LocationUpdated{ID: id, Fields: diff})
	return nil
}

// SoftDeleteLocation deactivates a location.
func (o *Org) SoftDeleteLocation(id int64) error {
	l, ok := o.locations[id]
	if !ok || !l.IsActive {
		return domainerr.NotFound("location", id)
	}
	l.IsActive = false
	o.locations[id] = l
	o.record(LocationDeleted{ID: id})
	return nil
}

// locationNameTaken ignores blank legacy names.
func (o *Org) locationNameTaken(key string, exclude int64) bool {
	for id, l := range o.locations {
		if id == exclude || !l.IsActive || strings.TrimSpace(l.Name) == "" {
			continue
		}
		if nameKey(l.Name) == key {
			return true
		}
	}
	return false
}

func validateCoordinates(lat, lng *float64) error {
	if lat != nil && (*lat < -90 || *lat > 90) {
		return domainerr.Invalid("latitude", "must be between -90 and 90")
	}
	if lng != nil && (*lng < -180 || *lng > 180) {
		return domainerr.Invalid("longitude", "must be between -180 and 180")
	}
	return nil
}

func changedFloat(dst **float64, next *float64) *float64 {
	if next == nil {
		return nil
	}
	if *dst != nil && **dst == *next {
		return nil
	}
	v := *next
	*dst = &v
	return &v
}
