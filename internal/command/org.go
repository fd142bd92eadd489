package command

type UpdateRegionProfile struct {
	orgTarget
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Website     *string `json:"website,omitempty"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	Twitter     *string `json:"twitter,omitempty"`
	Facebook    *string `json:"facebook,omitempty"`
	Instagram   *string `json:"instagram,omitempty"`
	LogoURL     *string `json:"logo_url,omitempty"`
}

type AddEventTag struct {
	orgTarget
	Name        string `json:"name" validate:"required"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

type UpdateEventTag struct {
	orgTarget
	EventTagID  int64   `json:"event_tag_id" validate:"required,gt=0"`
	Name        *string `json:"name,omitempty"`
	Color       *string `json:"color,omitempty"`
	Description *string `json:"description,omitempty"`
}

type SoftDeleteEventTag struct {
	orgTarget
	EventTagID int64 `json:"event_tag_id" validate:"required,gt=0"`
}

type CloneGlobalEventTag struct {
	orgTarget
	GlobalEventTagID int64 `json:"global_event_tag_id" validate:"required,gt=0"`
}

type AddEventType struct {
	orgTarget
	Name        string `json:"name" validate:"required"`
	Acronym     string `json:"acronym,omitempty" validate:"omitempty,max=2"`
	Category    string `json:"category" validate:"required"`
	Description string `json:"description"`
}

type UpdateEventType struct {
	orgTarget
	EventTypeID int64   `json:"event_type_id" validate:"required,gt=0"`
	Name        *string `json:"name,omitempty"`
	Acronym     *string `json:"acronym,omitempty" validate:"omitempty,max=2"`
	Category    *string `json:"category,omitempty"`
	Description *string `json:"description,omitempty"`
}

type SoftDeleteEventType struct {
	orgTarget
	EventTypeID int64 `json:"event_type_id" validate:"required,gt=0"`
}

type CloneGlobalEventType struct {
	orgTarget
	GlobalEventTypeID int64 `json:"global_event_type_id" validate:"required,gt=0"`
}

type AddLocation struct {
	orgTarget
	Name           string   `json:"name" validate:"required"`
	Description    string   `json:"description"`
	Latitude       *float64 `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude      *float64 `json:"longitude,omitempty" validate:"omitempty,longitude"`
	AddressStreet  string   `json:"address_street"`
	AddressStreet2 string   `json:"address_street2"`
	AddressCity    string   `json:"address_city"`
	AddressState   string   `json:"address_state"`
	AddressZip     string   `json:"address_zip"`
	AddressCountry string   `json:"address_country"`
	Email          string   `json:"email,omitempty" validate:"omitempty,email"`
}

type UpdateLocation struct {
	orgTarget
	LocationID     int64    `json:"location_id" validate:"required,gt=0"`
	Name           *string  `json:"name,omitempty"`
	Description    *string  `json:"description,omitempty"`
	Latitude       *float64 `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude      *float64 `json:"longitude,omitempty" validate:"omitempty,longitude"`
	AddressStreet  *string  `json:"address_street,omitempty"`
	AddressStreet2 *string  `json:"address_street2,omitempty"`
	AddressCity    *string  `json:"address_city,omitempty"`
	AddressState   *string  `json:"address_state,omitempty"`
	AddressZip     *string  `json:"address_zip,omitempty"`
	AddressCountry *string  `json:"address_country,omitempty"`
	Email          *string  `json:"email,omitempty" validate:"omitempty,email"`
}

type SoftDeleteLocation struct {
	orgTarget
	LocationID int64 `json:"location_id" validate:"required,gt=0"`
}

// AddPosition creates a position; an empty OrgType makes it visible from every org type.
type AddPosition struct {
	orgTarget
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	OrgType     string `json:"org_type,omitempty"`
}

type UpdatePosition struct {
	orgTarget
	PositionID  int64   `json:"position_id" validate:"required,gt=0"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	OrgType     *string `json:"org_type,omitempty"`
}

type SoftDeletePosition struct {
	orgTarget
	PositionID int64 `json:"position_id" validate:"required,gt=0"`
}

type ReplacePositionAssignments struct {
	orgTarget
	PositionID int64   `json:"position_id" validate:"required,gt=0"`
	UserIDs    []int64 `json:"user_ids" validate:"dive,gt=0"`
}

type AssignUserToPosition struct {
	orgTarget
	PositionID int64 `json:"position_id" validate:"required,gt=0"`
	UserID     int64 `json:"user_id" validate:"required,gt=0"`
}

type UnassignUserFromPosition struct {
	orgTarget
	PositionID int64 `json:"position_id" validate:"required,gt=0"`
	UserID     int64 `json:"user_id" validate:"required,gt=0"`
}

type AssignAdmin struct {
	orgTarget
	UserID int64 `json:"user_id" validate:"required,gt=0"`
}

type RevokeAdmin struct {
	orgTarget
	UserID int64 `json:"user_id" validate:"required,gt=0"`
}

type ReplaceAdmins struct {
	orgTarget
	UserIDs []int64 `json:"user_ids" validate:"dive,gt=0"`
}

func (UpdateRegionProfile) Kind() Kind        { return KindUpdateRegionProfile }
func (AddEventTag) Kind() Kind                { return KindAddEventTag }
func (UpdateEventTag) Kind() Kind             { return KindUpdateEventTag }
func (SoftDeleteEventTag) Kind() Kind         { return KindSoftDeleteEventTag }
func (CloneGlobalEventTag) Kind() Kind        { return KindCloneGlobalEventTag }
func (AddEventType) Kind() Kind               { return KindAddEventType }
func (UpdateEventType) Kind() Kind            { return KindUpdateEventType }
func (SoftDeleteEventType) Kind() Kind        { return KindSoftDeleteEventType }
func (CloneGlobalEventType) Kind() Kind       { return KindCloneGlobalEventType }
func (AddLocation) Kind() Kind                { return KindAddLocation }
func (UpdateLocation) Kind() Kind             { return KindUpdateLocation }
func (SoftDeleteLocation) Kind() Kind         { return KindSoftDeleteLocation }
func (AddPosition) Kind() Kind                { return KindAddPosition }
func (UpdatePosition) Kind() Kind             { return KindUpdatePosition }
func (SoftDeletePosition) Kind() Kind         { return KindSoftDeletePosition }
func (ReplacePositionAssignments) Kind() Kind { return KindReplacePositionAssignments }
func (AssignUserToPosition) Kind() Kind       { return KindAssignUserToPosition }
func (UnassignUserFromPosition) Kind() Kind   { return KindUnassignUserFromPosition }
func (AssignAdmin) Kind() Kind                { return KindAssignAdmin }
func (RevokeAdmin) Kind() Kind                { return KindRevokeAdmin }
func (ReplaceAdmins) Kind() Kind              { return KindReplaceAdmins }
