// Package command defines the closed set of commands accepted by the org and event command handlers
// and decodes them from their JSON envelope.
package command

// Kind names a command variant on the wire.
type Kind string

const (
	KindCreateSeries       Kind = "create_series"
	KindUpdateSeries       Kind = "update_series"
	KindDeactivateSeries   Kind = "deactivate_series"
	KindCreateInstance     Kind = "create_instance"
	KindUpdateInstance     Kind = "update_instance"
	KindDeactivateInstance Kind = "deactivate_instance"

	KindUpdateRegionProfile        Kind = "update_region_profile"
	KindAddEventTag                Kind = "add_event_tag"
	KindUpdateEventTag             Kind = "update_event_tag"
	KindSoftDeleteEventTag         Kind = "soft_delete_event_tag"
	KindCloneGlobalEventTag        Kind = "clone_global_event_tag"
	KindAddEventType               Kind = "add_event_type"
	KindUpdateEventType            Kind = "update_event_type"
	KindSoftDeleteEventType        Kind = "soft_delete_event_type"
	KindCloneGlobalEventType       Kind = "clone_global_event_type"
	KindAddLocation                Kind = "add_location"
	KindUpdateLocation             Kind = "update_location"
	KindSoftDeleteLocation         Kind = "soft_delete_location"
	KindAddPosition                Kind = "add_position"
	KindUpdatePosition             Kind = "update_position"
	KindSoftDeletePosition         Kind = "soft_delete_position"
	KindReplacePositionAssignments Kind = "replace_position_assignments"
	KindAssignUserToPosition       Kind = "assign_user_to_position"
	KindUnassignUserFromPosition   Kind = "unassign_user_from_position"
	KindAssignAdmin                Kind = "assign_admin"
	KindRevokeAdmin                Kind = "revoke_admin"
	KindReplaceAdmins              Kind = "replace_admins"
)

// Command is one decoded command. Every command targets exactly one org.
type Command interface {
	Kind() Kind
	TargetOrg() int64
	isCommand()
}

// IsEvent reports whether k is handled by the event command handler.
func (k Kind) IsEvent() bool {
	switch k {
	case KindCreateSeries, KindUpdateSeries, KindDeactivateSeries,
		KindCreateInstance, KindUpdateInstance, KindDeactivateInstance:
		return true
	}
	return false
}

// orgTarget is embedded by every command.
type orgTarget struct {
	OrgID int64 `json:"org_id" validate:"required,gt=0"`
}

func (t orgTarget) TargetOrg() int64 { return t.OrgID }
func (orgTarget) isCommand()         {}
