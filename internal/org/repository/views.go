package repository

import "f3-catalog/backend/internal/org/domain"

// Scope tags on read projections.
const (
	ScopeGlobal = "global"
	ScopeRegion = "region"
)

type EventTypeView struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Acronym     string `json:"acronym"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
	Scope       string `json:"scope"`
	IsActive    bool   `json:"is_active"`
}

type EventTagView struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Color       string `json:"color,omitempty"`
	Description string `json:"description,omitempty"`
	Scope       string `json:"scope"`
	IsActive    bool   `json:"is_active"`
}

type PositionView struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	// OrgType is empty for positions visible from every org type.
	OrgType  string `json:"org_type,omitempty"`
	Scope    string `json:"scope"`
	IsActive bool   `json:"is_active"`
}

type LocationView struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description,omitempty"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
	AddressStreet  string   `json:"address_street,omitempty"`
	AddressStreet2 string   `json:"address_street2,omitempty"`
	AddressCity    string   `json:"address_city,omitempty"`
	AddressState   string   `json:"address_state,omitempty"`
	AddressZip     string   `json:"address_zip,omitempty"`
	AddressCountry string   `json:"address_country,omitempty"`
	Email          string   `json:"email,omitempty"`
	Scope          string   `json:"scope"`
	IsActive       bool     `json:"is_active"`
}

func scopeTag(orgID *int64) string {
	if orgID == nil {
		return ScopeGlobal
	}
	return ScopeRegion
}

func eventTypeView(et domain.EventType) EventTypeView {
	return EventTypeView{
		ID: et.ID, Name: et.Name, Acronym: et.Acronym, Category: string(et.Category),
		Description: et.Description, Scope: scopeTag(et.OrgID), IsActive: et.IsActive,
	}
}

func eventTagView(t domain.EventTag) EventTagView {
	return EventTagView{
		ID: t.ID, Name: t.Name, Color: t.Color, Description: t.Description,
		Scope: scopeTag(t.OrgID), IsActive: t.IsActive,
	}
}

func positionView(p domain.Position) PositionView {
	return PositionView{
		ID: p.ID, Name: p.Name, Description: p.Description, OrgType: string(p.Scope),
		Scope: scopeTag(p.OrgID), IsActive: p.IsActive,
	}
}

// locationView shows legacy blank-named rows under their fallback display name.
func locationView(l domain.Location) LocationView {
	return LocationView{
		ID: l.ID, Name: l.DisplayName(), Description: l.Description,
		Latitude: l.Latitude, Longitude: l.Longitude,
		AddressStreet: l.AddressStreet, AddressStreet2: l.AddressStreet2, AddressCity: l.AddressCity,
		AddressState: l.AddressState, AddressZip: l.AddressZip, AddressCountry: l.AddressCountry,
		Email: l.Email, Scope: ScopeRegion, IsActive: l.IsActive,
	}
}
