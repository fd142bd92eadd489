package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"f3-catalog/backend/internal/command"
	"f3-catalog/backend/internal/org/domain"
	"f3-catalog/backend/internal/org/repository"
	"f3-catalog/backend/internal/platform/domainerr"
	"f3-catalog/backend/internal/platform/logger"
	"f3-catalog/backend/internal/telemetry"
	telemetrydomain "f3-catalog/backend/internal/telemetry/domain"
)

type recordingEmitter struct {
	mu     sync.Mutex
	events []*telemetrydomain.ChangeEvent
	done   chan struct{}
	want   int
}

func (r *recordingEmitter) Emit(_ context.Context, e *telemetrydomain.ChangeEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	if len(r.events) == r.want {
		close(r.done)
	}
	return nil
}

func newHandler(t *testing.T, opts ...Option) (*CommandHandler, *repository.MemoryRepository, int64) {
	t.Helper()
	repo := repository.NewMemoryRepository()
	orgID := repo.CreateOrg(nil, domain.OrgTypeRegion, "Gotham", 1)
	return NewCommandHandler(repo, logger.Nop(), opts...), repo, orgID
}

func addEventType(orgID int64, name string) *command.AddEventType {
	c := &command.AddEventType{Name: name, Category: string(domain.CategoryFirstF)}
	c.OrgID = orgID
	return c
}

func TestExecute_AddEventTypeReturnsPersistedID(t *testing.T) {
	ctx := context.Background()
	h, repo, orgID := newHandler(t)

	res, err := h.Execute(ctx, 1, addEventType(orgID, "Bootcamp"))
	require.NoError(t, err)
	require.Equal(t, orgID, res.OrgID)
	require.Equal(t, int64(1), res.Version)
	require.True(t, res.Changed())
	require.Equal(t, []string{string(domain.ChangeEventTypeCreated)}, res.Kinds)

	views, err := repo.GetEventTypes(ctx, orgID, repository.ListOptions{OnlyActive: true})
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Equal(t, views[0].ID, res.EntityID)
	require.Equal(t, "BO", views[0].Acronym)
}

func TestExecute_ValidationLeavesStoreUntouched(t *testing.T) {
	ctx := context.Background()
	h, repo, orgID := newHandler(t)

	_, err := h.Execute(ctx, 1, addEventType(orgID, "Bootcamp"))
	require.NoError(t, err)
	_, err = h.Execute(ctx, 1, addEventType(orgID, "  bootCAMP "))
	require.True(t, domainerr.IsValidation(err), "got %v", err)

	o, err := repo.Get(ctx, orgID)
	require.NoError(t, err)
	require.Equal(t, int64(1), o.Version)
	require.Len(t, o.EventTypes(), 1)
}

func TestExecute_EventTypeCategoryIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	h, repo, orgID := newHandler(t)

	c := addEventType(orgID, "Ruck")
	c.Category = " First_F "
	_, err := h.Execute(ctx, 1, c)
	require.NoError(t, err)

	views, err := repo.GetEventTypes(ctx, orgID, repository.ListOptions{OnlyActive: true})
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Equal(t, string(domain.CategoryFirstF), string(views[0].Category))

	c = addEventType(orgID, "Swim")
	c.Category = "fourth_f"
	_, err = h.Execute(ctx, 1, c)
	var verr *domainerr.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "category", verr.Field)
}

func TestExecute_SoftDeleteFreesName(t *testing.T) {
	ctx := context.Background()
	h, _, orgID := newHandler(t)

	res, err := h.Execute(ctx, 1, addEventType(orgID, "Ruck"))
	require.NoError(t, err)
	del := &command.SoftDeleteEventType{EventTypeID: res.EntityID}
	del.OrgID = orgID
	_, err = h.Execute(ctx, 1, del)
	require.NoError(t, err)

	res, err = h.Execute(ctx, 1, addEventType(orgID, "ruck"))
	require.NoError(t, err)
	require.Equal(t, int64(3), res.Version)
}

func TestExecute_UnknownOrg(t *testing.T) {
	h, _, _ := newHandler(t)
	_, err := h.Execute(context.Background(), 1, addEventType(999, "Bootcamp"))
	require.True(t, domainerr.IsNotFound(err))
}

func TestExecute_RegionProfileRequiresRegion(t *testing.T) {
	ctx := context.Background()
	h, repo, regionID := newHandler(t)
	aoID := repo.CreateOrg(&regionID, domain.OrgTypeAO, "The Pit", 1)

	name := "  Gotham City "
	c := &command.UpdateRegionProfile{Name: &name}
	c.OrgID = regionID
	res, err := h.Execute(ctx, 1, c)
	require.NoError(t, err)
	require.Equal(t, 1, res.Changes)

	o, err := repo.Get(ctx, regionID)
	require.NoError(t, err)
	require.Equal(t, "Gotham City", o.Name)

	c.OrgID = aoID
	_, err = h.Execute(ctx, 1, c)
	require.True(t, domainerr.IsValidation(err))
}

func TestExecute_CloneGlobalEventType(t *testing.T) {
	ctx := context.Background()
	h, repo, orgID := newHandler(t)
	globalID := repo.PutEventType(domain.EventType{Name: "Bootcamp", Acronym: "BC", Category: domain.CategoryFirstF, IsActive: true})

	clone := &command.CloneGlobalEventType{GlobalEventTypeID: globalID}
	clone.OrgID = orgID
	res, err := h.Execute(ctx, 1, clone)
	require.NoError(t, err)
	require.NotEqual(t, globalID, res.EntityID)

	views, err := repo.GetEventTypes(ctx, orgID, repository.ListOptions{IncludeGlobal: true, OnlyActive: true})
	require.NoError(t, err)
	require.Len(t, views, 2)

	clone.GlobalEventTypeID = globalID + 100
	_, err = h.Execute(ctx, 1, clone)
	require.True(t, domainerr.IsNotFound(err))
}

func TestExecute_ReplacePositionAssignmentsEmitsMinimalDiff(t *testing.T) {
	ctx := context.Background()
	h, repo, orgID := newHandler(t)

	add := &command.AddPosition{Name: "Nantan", OrgType: "region"}
	add.OrgID = orgID
	res, err := h.Execute(ctx, 1, add)
	require.NoError(t, err)
	posID := res.EntityID

	replace := &command.ReplacePositionAssignments{PositionID: posID, UserIDs: []int64{1, 2}}
	replace.OrgID = orgID
	_, err = h.Execute(ctx, 1, replace)
	require.NoError(t, err)

	replace.UserIDs = []int64{2, 3}
	res, err = h.Execute(ctx, 1, replace)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{
		string(domain.ChangePositionUnassigned),
		string(domain.ChangePositionAssigned),
	}, res.Kinds)

	o, err := repo.Get(ctx, orgID)
	require.NoError(t, err)
	require.Equal(t, []int64{2, 3}, o.AssignedUsers(posID))
}

func TestExecute_WildcardPositionCollides(t *testing.T) {
	ctx := context.Background()
	h, _, orgID := newHandler(t)

	add := &command.AddPosition{Name: "Nantan"}
	add.OrgID = orgID
	_, err := h.Execute(ctx, 1, add)
	require.NoError(t, err)

	add.OrgType = "region"
	_, err = h.Execute(ctx, 1, add)
	require.True(t, domainerr.IsValidation(err))
}

func TestExecute_AdminCommands(t *testing.T) {
	ctx := context.Background()
	h, repo, orgID := newHandler(t)

	assign := &command.AssignAdmin{UserID: 1}
	assign.OrgID = orgID
	res, err := h.Execute(ctx, 1, assign)
	require.NoError(t, err)
	require.False(t, res.Changed(), "existing admin is a no-op")

	revoke := &command.RevokeAdmin{UserID: 1}
	revoke.OrgID = orgID
	_, err = h.Execute(ctx, 1, revoke)
	require.True(t, domainerr.IsValidation(err), "last admin cannot be removed")

	replace := &command.ReplaceAdmins{}
	replace.OrgID = orgID
	_, err = h.Execute(ctx, 1, replace)
	require.True(t, domainerr.IsValidation(err))

	replace.UserIDs = []int64{5, 6}
	res, err = h.Execute(ctx, 1, replace)
	require.NoError(t, err)
	require.Equal(t, 3, res.Changes)

	o, err := repo.Get(ctx, orgID)
	require.NoError(t, err)
	require.ElementsMatch(t, []int64{5, 6}, o.Admins())
}

func TestExecute_RejectsEventCommands(t *testing.T) {
	h, _, orgID := newHandler(t)
	c := &command.DeactivateSeries{SeriesID: 1}
	c.OrgID = orgID
	_, err := h.Execute(context.Background(), 1, c)
	require.True(t, domainerr.IsValidation(err))
}

func TestExecute_EmitsAppliedChanges(t *testing.T) {
	rec := &recordingEmitter{done: make(chan struct{}), want: 2}
	h, _, orgID := newHandler(t, WithEmitter(telemetry.NewChangeEmitter(rec, logger.Nop())))

	loc := &command.AddLocation{Name: "Central Park"}
	loc.OrgID = orgID
	_, err := h.Execute(context.Background(), 42, loc)
	require.NoError(t, err)
	_, err = h.Execute(context.Background(), 42, addEventType(orgID, "Bootcamp"))
	require.NoError(t, err)

	select {
	case <-rec.done:
	case <-time.After(2 * time.Second):
		t.Fatal("change events were not emitted")
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	kinds := make([]string, 0, len(rec.events))
	for _, e := range rec.events {
		require.Equal(t, orgID, e.OrgID)
		require.Equal(t, int64(42), e.UserID)
		kinds = append(kinds, e.Kind)
	}
	require.ElementsMatch(t, []string{string(domain.ChangeLocationCreated), string(domain.ChangeEventTypeCreated)}, kinds)
}

func TestExecute_FailedCommandIsNotEmitted(t *testing.T) {
	rec := &recordingEmitter{done: make(chan struct{}), want: 1}
	h, _, orgID := newHandler(t, WithEmitter(telemetry.NewChangeEmitter(rec, logger.Nop())))

	_, err := h.Execute(context.Background(), 1, addEventType(orgID, ""))
	require.Error(t, err)

	select {
	case <-rec.done:
		t.Fatal("failed command must not emit")
	case <-time.After(50 * time.Millisecond):
	}
}
