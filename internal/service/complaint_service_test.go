package service

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquanet/water-service/internal/domain"
	"github.com/aquanet/water-service/internal/events"
	apperrors "github.com/aquanet/water-service/pkg/util"
)

func seedUser(t *testing.T, repo *memUserRepo, name string, role domain.Role) *domain.User {
	t.Helper()
	user := &domain.User{Name: name, Email: name + "@example.com", Role: role}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func newComplaintFixture(t *testing.T) (*ComplaintService, *memComplaintRepo, *memUserRepo, *recordingDispatcher) {
	t.Helper()
	complaints := newMemComplaintRepo()
	users := newMemUserRepo()
	dispatcher := &recordingDispatcher{}
	return NewComplaintService(complaints, users, dispatcher), complaints, users, dispatcher
}

func TestComplaintCreateDefaults(t *testing.T) {
	svc, _, users, dispatcher := newComplaintFixture(t)
	customer := seedUser(t, users, "alice", domain.RoleCustomer)

	complaint, err := svc.Create(context.Background(), customer, ComplaintCreateInput{
		Title:       "No water supply",
		Description: "No water since yesterday morning",
		Category:    domain.CategoryNoWater,
		Location:    "Ward 4",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ComplaintStatusReceived, complaint.Status)
	assert.Equal(t, domain.PriorityMedium, complaint.Priority)
	assert.Equal(t, customer.ID, complaint.SubmittedBy)
	assert.Nil(t, complaint.ResolvedAt)
	assert.Regexp(t, regexp.MustCompile(`^CMP-[0-9A-F]{8}$`), complaint.ReferenceNumber)

	created := dispatcher.byType(events.EventComplaintCreated)
	require.Len(t, created, 1)
	assert.Equal(t, complaint.ID, created[0].SubjectID)
}

func TestComplaintCreateRejectsUnknownCategory(t *testing.T) {
	svc, _, users, _ := newComplaintFixture(t)
	customer := seedUser(t, users, "alice", domain.RoleCustomer)

	_, err := svc.Create(context.Background(), customer, ComplaintCreateInput{
		Title:       "Strange bill",
		Description: "Bill tripled overnight",
		Category:    domain.ComplaintCategory("plumbing"),
		Location:    "Ward 2",
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestComplaintListScoping(t *testing.T) {
	svc, _, users, _ := newComplaintFixture(t)
	alice := seedUser(t, users, "alice", domain.RoleCustomer)
	bob := seedUser(t, users, "bob", domain.RoleCustomer)
	tech := seedUser(t, users, "tina", domain.RoleTechnician)
	supervisor := seedUser(t, users, "sam", domain.RoleSupervisor)

	ctx := context.Background()
	mine, err := svc.Create(ctx, alice, ComplaintCreateInput{
		Title: "Leak", Description: "Pipe leaking at the corner", Category: domain.CategoryPipeLeak, Location: "Ward 1",
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, bob, ComplaintCreateInput{
		Title: "Low pressure", Description: "Barely a trickle upstairs", Category: domain.CategoryNoWater, Location: "Ward 2",
	})
	require.NoError(t, err)

	// assign alice's complaint to the technician
	_, err = svc.Update(ctx, supervisor, mine.ID, ComplaintUpdateInput{AssignedTo: &tech.ID})
	require.NoError(t, err)

	items, total, err := svc.List(ctx, alice, ComplaintListQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, mine.ID, items[0].ID)

	items, total, err = svc.List(ctx, tech, ComplaintListQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, mine.ID, items[0].ID)

	_, total, err = svc.List(ctx, supervisor, ComplaintListQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}

func TestComplaintGetDeniesOtherCustomers(t *testing.T) {
	svc, _, users, _ := newComplaintFixture(t)
	alice := seedUser(t, users, "alice", domain.RoleCustomer)
	bob := seedUser(t, users, "bob", domain.RoleCustomer)

	ctx := context.Background()
	complaint, err := svc.Create(ctx, alice, ComplaintCreateInput{
		Title: "Leak", Description: "Pipe leaking", Category: domain.CategoryPipeLeak, Location: "Ward 1",
	})
	require.NoError(t, err)

	_, err = svc.Get(ctx, bob, complaint.ID)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)

	got, err := svc.Get(ctx, alice, complaint.ID)
	require.NoError(t, err)
	assert.Equal(t, complaint.ID, got.ID)
}

func TestComplaintResolveStampsResolvedAt(t *testing.T) {
	svc, _, users, dispatcher := newComplaintFixture(t)
	alice := seedUser(t, users, "alice", domain.RoleCustomer)
	supervisor := seedUser(t, users, "sam", domain.RoleSupervisor)

	ctx := context.Background()
	complaint, err := svc.Create(ctx, alice, ComplaintCreateInput{
		Title: "Leak", Description: "Pipe leaking", Category: domain.CategoryPipeLeak, Location: "Ward 1",
	})
	require.NoError(t, err)

	inProgress := domain.ComplaintStatusInProgress
	_, err = svc.Update(ctx, supervisor, complaint.ID, ComplaintUpdateInput{Status: &inProgress})
	require.NoError(t, err)

	resolved := domain.ComplaintStatusResolved
	notes := "replaced the valve"
	updated, err := svc.Update(ctx, supervisor, complaint.ID, ComplaintUpdateInput{Status: &resolved, ResolutionNotes: &notes})
	require.NoError(t, err)
	assert.Equal(t, domain.ComplaintStatusResolved, updated.Status)
	require.NotNil(t, updated.ResolvedAt)
	assert.Equal(t, "replaced the valve", updated.ResolutionNotes)

	assert.Len(t, dispatcher.byType(events.EventComplaintStatusChanged), 2)
}

func TestComplaintResolvedIsTerminal(t *testing.T) {
	svc, _, users, _ := newComplaintFixture(t)
	alice := seedUser(t, users, "alice", domain.RoleCustomer)
	supervisor := seedUser(t, users, "sam", domain.RoleSupervisor)

	ctx := context.Background()
	complaint, err := svc.Create(ctx, alice, ComplaintCreateInput{
		Title: "Leak", Description: "Pipe leaking", Category: domain.CategoryPipeLeak, Location: "Ward 1",
	})
	require.NoError(t, err)

	resolved := domain.ComplaintStatusResolved
	_, err = svc.Update(ctx, supervisor, complaint.ID, ComplaintUpdateInput{Status: &resolved})
	require.NoError(t, err)

	received := domain.ComplaintStatusReceived
	_, err = svc.Update(ctx, supervisor, complaint.ID, ComplaintUpdateInput{Status: &received})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestComplaintAssignmentRequiresStaff(t *testing.T) {
	svc, _, users, _ := newComplaintFixture(t)
	alice := seedUser(t, users, "alice", domain.RoleCustomer)
	bob := seedUser(t, users, "bob", domain.RoleCustomer)
	supervisor := seedUser(t, users, "sam", domain.RoleSupervisor)

	ctx := context.Background()
	complaint, err := svc.Create(ctx, alice, ComplaintCreateInput{
		Title: "Leak", Description: "Pipe leaking", Category: domain.CategoryPipeLeak, Location: "Ward 1",
	})
	require.NoError(t, err)

	_, err = svc.Update(ctx, supervisor, complaint.ID, ComplaintUpdateInput{AssignedTo: &bob.ID})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestComplaintUpdateUnknownID(t *testing.T) {
	svc, _, users, _ := newComplaintFixture(t)
	supervisor := seedUser(t, users, "sam", domain.RoleSupervisor)

	resolved := domain.ComplaintStatusResolved
	_, err := svc.Update(context.Background(), supervisor, "missing", ComplaintUpdateInput{Status: &resolved})
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}
