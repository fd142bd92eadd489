package domain

import (
	"fmt"
	"strings"

	"f3-catalog/backend/internal/platform/domainerr"
)

// OrgType is the level of an org in the hierarchy.
type OrgType string

const (
	OrgTypeRegion OrgType = "region"
	OrgTypeAO     OrgType = "ao"
	OrgTypeArea   OrgType = "area"
	OrgTypeSector OrgType = "sector"
)

// ParseOrgType validates s as an OrgType.
func ParseOrgType(s string) (OrgType, error) {
	switch t := OrgType(strings.ToLower(strings.TrimSpace(s))); t {
	case OrgTypeRegion, OrgTypeAO, OrgTypeArea, OrgTypeSector:
		return t, nil
	default:
		return "", domainerr.Invalid("org_type", "unknown org type %q", s)
	}
}

// EventCategory classifies event types (fitness, fellowship, faith).
type EventCategory string

const (
	CategoryFirstF  EventCategory = "first_f"
	CategorySecondF EventCategory = "second_f"
	CategoryThirdF  EventCategory = "third_f"
)

// ParseEventCategory validates s as an EventCategory.
func ParseEventCategory(s string) (EventCategory, error) {
	switch c := EventCategory(strings.ToLower(strings.TrimSpace(s))); c {
	case CategoryFirstF, CategorySecondF, CategoryThirdF:
		return c, nil
	default:
		return "", domainerr.Invalid("category", "unknown event category %q", s)
	}
}

// PositionScope is the org type a position applies to. WildcardScope is visible from every org type.
type PositionScope string

const WildcardScope PositionScope = ""

// ScopeOf converts an optional org type to a scope.
func ScopeOf(t *OrgType) PositionScope {
	if t == nil {
		return WildcardScope
	}
	return PositionScope(*t)
}

// OrgType returns the scope as an optional org type (nil for the wildcard).
func (s PositionScope) OrgType() *OrgType {
	if s == WildcardScope {
		return nil
	}
	t := OrgType(s)
	return &t
}

// EventType is a kind of event (Bootcamp, Ruck, QSource...). OrgID is nil for global entries.
type EventType struct {
	ID          int64
	OrgID       *int64
	Name        string
	Acronym     string
	Category    EventCategory
	Description string
	IsActive    bool
}

// EventTag is a label attached to events. OrgID is nil for global entries.
type EventTag struct {
	ID          int64
	OrgID       *int64
	Name        string
	Color       string
	Description string
	IsActive    bool
}

// Position is a leadership role. OrgID is nil for global entries; Scope restricts which org types use it.
type Position struct {
	ID          int64
	OrgID       *int64
	Name        string
	Description string
	Scope       PositionScope
	IsActive    bool
}

// Location is a physical meeting place owned by one org.
type Location struct {
	ID             int64
	OrgID          int64
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
	IsActive       bool
}

// DisplayName falls back to the description, then the street address, for legacy rows persisted without a name.
func (l Location) DisplayName() string {
	if s := strings.TrimSpace(l.Name); s != "" {
		return s
	}
	if s := strings.TrimSpace(l.Description); s != "" {
		return s
	}
	parts := make([]string, 0, 2)
	for _, p := range []string{l.AddressStreet, l.AddressCity} {
		if s := strings.TrimSpace(p); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, ", ")
	}
	return fmt.Sprintf("Location %d", l.ID)
}

// Profile holds the org's descriptive fields.
type Profile struct {
	Description string
	Website     string
	Email       string
	Twitter     string
	Facebook    string
	Instagram   string
	LogoURL     string
}
