package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/aquanet/water-service/internal/config"
	"github.com/aquanet/water-service/internal/domain"
	apperrors "github.com/aquanet/water-service/pkg/util"
)

func newAuthFixture(t *testing.T) (*AuthService, *memUserRepo) {
	t.Helper()
	users := newMemUserRepo()
	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 15,
			BcryptCost:            bcrypt.MinCost,
		},
	}
	return NewAuthService(cfg, users), users
}

func TestRegisterAlwaysCreatesCustomer(t *testing.T) {
	svc, users := newAuthFixture(t)

	user, token, exp, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Alice Brown",
		Email:    "  Alice@Example.COM ",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.RoleCustomer, user.Role)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEmpty(t, token)
	assert.False(t, exp.IsZero())

	stored, err := users.GetByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCustomer, stored.Role)
	assert.NotEqual(t, "s3cret-pass", stored.PasswordHash)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	_, _, _, err := svc.Register(ctx, RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "pw-one"})
	require.NoError(t, err)

	_, _, _, err = svc.Register(ctx, RegisterInput{Name: "Other Alice", Email: "ALICE@example.com", Password: "pw-two"})
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)
}

func TestLogin(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	_, _, _, err := svc.Register(ctx, RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "pw-secret"})
	require.NoError(t, err)

	user, token, _, err := svc.Login(ctx, "alice@example.com", "pw-secret")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEmpty(t, token)

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, domain.RoleCustomer, claims.Role)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	_, _, _, err := svc.Register(ctx, RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "pw-secret"})
	require.NoError(t, err)

	// wrong password and unknown email produce the same error
	_, _, _, err = svc.Login(ctx, "alice@example.com", "wrong")
	require.Error(t, err)
	wrongPass := apperrors.ToDomainError(err)

	_, _, _, err = svc.Login(ctx, "nobody@example.com", "pw-secret")
	require.Error(t, err)
	unknown := apperrors.ToDomainError(err)

	assert.Equal(t, "UNAUTHORIZED", wrongPass.Code)
	assert.Equal(t, wrongPass.Message, unknown.Message)
}

func TestCreateStaffValidatesRole(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.CreateStaff(ctx, CreateStaffInput{
		Name: "Carol", Email: "carol@example.com", Password: "pw", Role: domain.RoleCustomer,
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	staff, err := svc.CreateStaff(ctx, CreateStaffInput{
		Name: "Carol", Email: "carol@example.com", Password: "pw", Role: domain.RoleSupervisor,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleSupervisor, staff.Role)
}

func TestListStaffExcludesCustomers(t *testing.T) {
	svc, users := newAuthFixture(t)
	ctx := context.Background()

	seedUser(t, users, "alice", domain.RoleCustomer)
	seedUser(t, users, "tina", domain.RoleTechnician)
	seedUser(t, users, "sam", domain.RoleSupervisor)

	staff, err := svc.ListStaff(ctx)
	require.NoError(t, err)
	require.Len(t, staff, 2)
	for _, member := range staff {
		assert.True(t, member.Role.IsStaff())
	}
}
