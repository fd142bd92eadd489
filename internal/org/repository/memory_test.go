package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"f3-catalog/backend/internal/org/domain"
	"f3-catalog/backend/internal/platform/domainerr"
)

func TestMemoryRepository_SaveThenGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	repo.PutEventType(domain.EventType{Name: "Bootcamp", Acronym: "BC", Category: domain.CategoryFirstF, IsActive: true})
	orgID := repo.CreateOrg(nil, domain.OrgTypeRegion, "Gotham", 1)

	o, err := repo.Get(ctx, orgID)
	require.NoError(t, err)
	_, err = o.AddEventType(domain.EventTypeInput{Name: "bootcamp", Category: domain.CategoryFirstF})
	require.True(t, domainerr.IsValidation(err), "global names are enforced after load")

	et, err := o.AddEventType(domain.EventTypeInput{Name: "Ruck", Category: domain.CategoryFirstF})
	require.NoError(t, err)
	pos, err := o.AddPosition(domain.PositionInput{Name: "Nantan"})
	require.NoError(t, err)
	require.NoError(t, o.ReplacePositionAssignments(pos.ID, []int64{3, 4}))
	_, err = o.AddLocation(domain.LocationInput{Name: "Central Park"})
	require.NoError(t, err)
	require.NoError(t, o.SoftDeleteEventType(et.ID))
	o.BumpVersion()
	require.NoError(t, repo.Save(ctx, o))

	o2, err := repo.Get(ctx, orgID)
	require.NoError(t, err)
	require.Equal(t, int64(1), o2.Version)
	require.Equal(t, o.EventTypes(), o2.EventTypes())
	require.Equal(t, o.Positions(), o2.Positions())
	require.Equal(t, o.Locations(), o2.Locations())
	posID := o.ResolveID(domain.KindPosition, pos.ID)
	require.Equal(t, []int64{3, 4}, o2.AssignedUsers(posID))
	require.Equal(t, []int64{1}, o2.Admins())

	require.NoError(t, repo.Save(ctx, o), "second save replays nothing")
	o3, err := repo.Get(ctx, orgID)
	require.NoError(t, err)
	require.Equal(t, o2.EventTypes(), o3.EventTypes())
}

func TestMemoryRepository_StaleSaveConflicts(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	orgID := repo.CreateOrg(nil, domain.OrgTypeRegion, "Gotham", 1)

	a, err := repo.Get(ctx, orgID)
	require.NoError(t, err)
	b, err := repo.Get(ctx, orgID)
	require.NoError(t, err)

	_, err = a.AddEventTag(domain.EventTagInput{Name: "VQ"})
	require.NoError(t, err)
	a.BumpVersion()
	require.NoError(t, repo.Save(ctx, a))

	_, err = b.AddEventTag(domain.EventTagInput{Name: "CSAUP"})
	require.NoError(t, err)
	b.BumpVersion()
	require.True(t, domainerr.IsConflict(repo.Save(ctx, b)))
}

func TestMemoryRepository_ParentPositionsAndProjections(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	region := repo.CreateOrg(nil, domain.OrgTypeRegion, "Gotham", 1)
	ao := repo.CreateOrg(&region, domain.OrgTypeAO, "The Yard", 2)
	repo.PutPosition(domain.Position{Name: "Nantan", Scope: domain.PositionScope(domain.OrgTypeRegion), IsActive: true})
	repo.PutPosition(domain.Position{Name: "Site Q", Scope: domain.PositionScope(domain.OrgTypeAO), IsActive: true})
	repo.PutPosition(domain.Position{OrgID: &region, Name: "Comz Q", IsActive: true})
	repo.PutLocation(domain.Location{OrgID: ao, Description: "Old park", IsActive: true})

	o, err := repo.Get(ctx, ao)
	require.NoError(t, err)
	_, err = o.AddPosition(domain.PositionInput{Name: "comz q", Scope: domain.PositionScope(domain.OrgTypeAO)})
	require.True(t, domainerr.IsValidation(err))

	views, err := repo.GetPositions(ctx, ao, ListOptions{IncludeGlobal: true, OnlyActive: true})
	require.NoError(t, err)
	var names []string
	for _, v := range views {
		names = append(names, v.Name)
	}
	require.Equal(t, []string{"Site Q", "Comz Q"}, names)

	locs, err := repo.GetLocations(ctx, ao, ListOptions{OnlyActive: true})
	require.NoError(t, err)
	require.Equal(t, "Old park", locs[0].Name)

	children, err := repo.ListChildren(ctx, region, false)
	require.NoError(t, err)
	require.Len(t, children, 1)
	require.Equal(t, "The Yard", children[0].Name)

	scope, err := repo.AdminScope(ctx, ao)
	require.NoError(t, err)
	require.Equal(t, []int64{2}, scope.Admins)
	require.Equal(t, []int64{1}, scope.ParentAdmins)

	_, err = repo.Get(ctx, 999)
	require.True(t, domainerr.IsNotFound(err))
}
