package domain

import (
	"strings"

	"f3-catalog/backend/internal/platform/valueobject"
)

// UpdateProfile applies the supplied, changed profile fields as one ProfileUpdated record.
func (o *Org) UpdateProfile(in ProfileFields) error {
	name := o.Name
	profile := o.Profile
	var diff ProfileFields

	if in.Name != nil {
		n, err := valueobject.NewName("name", *in.Name)
		if err != nil {
			return err
		}
		s := n.String()
		diff.Name = setIfChanged(&name, &s)
	}
	text := []struct {
		in   *string
		dst  *string
		diff **string
	}{
		{in.Description, &profile.Description, &diff.Description},
		{in.Website, &profile.Website, &diff.Website},
		{in.Email, &profile.Email, &diff.Email},
		{in.Twitter, &profile.Twitter, &diff.Twitter},
		{in.Facebook, &profile.Facebook, &diff.Facebook},
		{in.Instagram, &profile.Instagram, &diff.Instagram},
		{in.LogoURL, &profile.LogoURL, &diff.LogoURL},
	}
	for _, f := range text {
		if f.in == nil {
			continue
		}
		s := strings.TrimSpace(*f.in)
		*f.diff = setIfChanged(f.dst, &s)
	}

	if diff == (ProfileFields{}) {
		return nil
	}
	o.Name = name
	o.Profile = profile
	o.record(ProfileUpdated{Fields: diff})
	return nil
}
