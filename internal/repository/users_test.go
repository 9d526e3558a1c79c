package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taskpulse-dev/taskpulse/internal/models"
	"github.com/taskpulse-dev/taskpulse/internal/repository"
	"github.com/taskpulse-dev/taskpulse/internal/testutil"
	"github.com/taskpulse-dev/taskpulse/internal/types"
)

func newOwner(email, workspace string) *models.User {
	return &models.User{
		Name:          "Owner",
		Email:         email,
		PasswordHash:  "hash",
		Role:          types.RoleAdmin,
		JobTitle:      types.JobTitleOwner,
		WorkspaceName: workspace,
	}
}

func TestCreateOwnerNormalizesAndClaimsWorkspace(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewGormUserRepo(testutil.NewTestDB(t))

	owner := newOwner("  Alice@X.com ", "Acme")
	require.NoError(t, repo.CreateOwner(ctx, owner))
	require.NotEmpty(t, owner.ID)
	require.Equal(t, "alice@x.com", owner.Email)
	require.Equal(t, "acme", owner.WorkspaceKey)

	found, err := repo.FindByEmail(ctx, "ALICE@x.com")
	require.NoError(t, err)
	require.Equal(t, owner.ID, found.ID)
	require.Equal(t, "Acme", found.WorkspaceName)
}

func TestCreateOwnerRejectsCaseVariantWorkspace(t *testing.T) {
	ctx := context.Background()
	conn := testutil.NewTestDB(t)
	repo := repository.NewGormUserRepo(conn)

	require.NoError(t, repo.CreateOwner(ctx, newOwner("alice@x.com", "Acme")))

	err := repo.CreateOwner(ctx, newOwner("carol@x.com", "ACME"))
	require.ErrorIs(t, err, repository.ErrDuplicateWorkspace)

	// The failed transaction must not leave Carol behind.
	_, err = repo.FindByEmail(ctx, "carol@x.com")
	require.ErrorIs(t, err, repository.ErrNotFound)

	var claims int64
	require.NoError(t, conn.Model(&models.Workspace{}).Count(&claims).Error)
	require.Equal(t, int64(1), claims)
}

func TestCreateRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewGormUserRepo(testutil.NewTestDB(t))

	require.NoError(t, repo.CreateOwner(ctx, newOwner("alice@x.com", "Acme")))

	member := &models.User{Email: "ALICE@x.com", PasswordHash: "hash", Role: types.RoleMember, WorkspaceName: "Acme"}
	require.ErrorIs(t, repo.Create(ctx, member), repository.ErrDuplicateEmail)
}

func TestFindByWorkspaceIsCaseInsensitiveAndLiteral(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewGormUserRepo(testutil.NewTestDB(t))

	require.NoError(t, repo.CreateOwner(ctx, newOwner("alice@x.com", "Acme")))
	require.NoError(t, repo.CreateOwner(ctx, newOwner("dan@x.com", "R&D (v2.*)")))

	found, err := repo.FindByWorkspace(ctx, "  aCmE ")
	require.NoError(t, err)
	require.Equal(t, "Acme", found.WorkspaceName)

	found, err = repo.FindByWorkspace(ctx, "r&d (V2.*)")
	require.NoError(t, err)
	require.Equal(t, "dan@x.com", found.Email)

	for _, pattern := range []string{"A.me", "Ac%", "^Acme$", "Acm_", ".*"} {
		_, err = repo.FindByWorkspace(ctx, pattern)
		require.ErrorIs(t, err, repository.ErrNotFound, pattern)
	}
}

func TestListByWorkspaceAndUpdateProfile(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewGormUserRepo(testutil.NewTestDB(t))

	owner := newOwner("alice@x.com", "Acme")
	require.NoError(t, repo.CreateOwner(ctx, owner))
	bob := &models.User{Name: "Bob", Email: "bob@x.com", PasswordHash: "hash", Role: types.RoleMember, JobTitle: types.JobTitleMember, WorkspaceName: "Acme"}
	require.NoError(t, repo.Create(ctx, bob))
	require.NoError(t, repo.CreateOwner(ctx, newOwner("eve@y.com", "Globex")))

	users, err := repo.ListByWorkspace(ctx, "ACME")
	require.NoError(t, err)
	require.Len(t, users, 2)

	name, title := "Robert", "Designer"
	updated, err := repo.UpdateProfile(ctx, bob.ID, repository.ProfileChanges{Name: &name, JobTitle: &title})
	require.NoError(t, err)
	require.Equal(t, "Robert", updated.Name)
	require.Equal(t, "Designer", updated.JobTitle)
	require.Equal(t, "bob@x.com", updated.Email)
	require.Equal(t, types.RoleMember, updated.Role)
	require.Equal(t, "Acme", updated.WorkspaceName)

	_, err = repo.UpdateProfile(ctx, "missing", repository.ProfileChanges{Name: &name})
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUpdateProfileLeavesUnsetFieldsAlone(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewGormUserRepo(testutil.NewTestDB(t))

	owner := newOwner("alice@x.com", "Acme")
	require.NoError(t, repo.CreateOwner(ctx, owner))

	title := "CEO"
	updated, err := repo.UpdateProfile(ctx, owner.ID, repository.ProfileChanges{JobTitle: &title})
	require.NoError(t, err)
	require.Equal(t, "Owner", updated.Name)
	require.Equal(t, "CEO", updated.JobTitle)

	updated, err = repo.UpdateProfile(ctx, owner.ID, repository.ProfileChanges{})
	require.NoError(t, err)
	require.Equal(t, "Owner", updated.Name)
	require.Equal(t, "CEO", updated.JobTitle)
}
