package domain

import (
	"slices"

	"f3-catalog/backend/internal/platform/domainerr"
)

// AssignAdmin grants admin rights. Assigning an existing admin is a no-op.
func (o *Org) AssignAdmin(userID int64) error {
	if err := validateUserID(userID); err != nil {
		return err
	}
	if o.IsAdmin(userID) {
		return nil
	}
	o.admins = append(o.admins, userID)
	o.record(AdminAssigned{UserID: userID})
	return nil
}

// RevokeAdmin removes admin rights. A region must keep at least one admin. Revoking a non-admin is a no-op.
func (o *Org) RevokeAdmin(userID int64) error {
	i := slices.Index(o.admins, userID)
	if i < 0 {
		return nil
	}
	if o.Type == OrgTypeRegion && len(o.admins) == 1 {
		return domainerr.Invalid("admins", "cannot remove last admin")
	}
	o.admins = slices.Delete(o.admins, i, i+1)
	o.record(AdminRevoked{UserID: userID})
	return nil
}

// ReplaceAdmins makes userIDs the exact admin set. New admins are recorded before revocations so the
// stored set is never empty mid-batch.
func (o *Org) ReplaceAdmins(userIDs []int64) error {
	if len(userIDs) == 0 {
		return domainerr.Invalid("admins", "at least one admin is required")
	}
	want := make(map[int64]struct{}, len(userIDs))
	for _, id := range userIDs {
		if err := validateUserID(id); err != nil {
			return err
		}
		want[id] = struct{}{}
	}
	for _, id := range userIDs {
		if !o.IsAdmin(id) {
			o.admins = append(o.admins, id)
			o.record(AdminAssigned{UserID: id})
		}
	}
	kept := o.admins[:0]
	var revoked []int64
	for _, id := range o.admins {
		if _, ok := want[id]; ok {
			kept = append(kept, id)
		} else {
			revoked = append(revoked, id)
		}
	}
	o.admins = kept
	for _, id := range revoked {
		o.record(AdminRevoked{UserID: id})
	}
	return nil
}
