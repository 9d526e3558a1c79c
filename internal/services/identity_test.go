package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taskpulse-dev/taskpulse/internal/auth"
	"github.com/taskpulse-dev/taskpulse/internal/repository"
	"github.com/taskpulse-dev/taskpulse/internal/services"
	"github.com/taskpulse-dev/taskpulse/internal/testutil"
	"github.com/taskpulse-dev/taskpulse/internal/types"
)

func newIssuer(t *testing.T) *auth.JWTIssuer {
	t.Helper()
	issuer, err := auth.NewJWTIssuer("test-secret", 24*time.Hour)
	require.NoError(t, err)
	return issuer
}

func newIdentityService(t *testing.T, users repository.UserRepository) (*services.IdentityService, *auth.JWTIssuer) {
	t.Helper()
	issuer := newIssuer(t)
	return services.NewIdentityService(users, issuer, zap.NewNop()), issuer
}

func register(t *testing.T, svc *services.IdentityService, email, workspace, role string) services.AuthResult {
	t.Helper()
	result, err := svc.Register(context.Background(), services.RegisterInput{
		Email:         email,
		Password:      "secret123",
		Name:          email,
		WorkspaceName: workspace,
		Role:          role,
	})
	require.NoError(t, err)
	return result
}

func TestRegisterDecisionTable(t *testing.T) {
	cases := []struct {
		name          string
		existing      bool
		role          string
		wantErr       error
		wantRole      string
		wantJobTitle  string
		wantWorkspace string
	}{
		{name: "member without workspace", role: types.RoleMember, wantErr: services.ErrWorkspaceNotFound},
		{name: "admin with existing workspace", existing: true, role: types.RoleAdmin, wantErr: services.ErrWorkspaceTaken},
		{name: "member joins existing", existing: true, role: types.RoleMember, wantRole: types.RoleMember, wantJobTitle: types.JobTitleMember, wantWorkspace: "Acme"},
		{name: "admin founds new", role: types.RoleAdmin, wantRole: types.RoleAdmin, wantJobTitle: types.JobTitleOwner, wantWorkspace: "aCME"},
		{name: "unspecified joins existing", existing: true, wantRole: types.RoleMember, wantJobTitle: types.JobTitleMember, wantWorkspace: "Acme"},
		{name: "unspecified founds new", wantRole: types.RoleAdmin, wantJobTitle: types.JobTitleOwner, wantWorkspace: "aCME"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, issuer := newIdentityService(t, newFakeUsers())
			if tc.existing {
				register(t, svc, "alice@x.com", "Acme", types.RoleAdmin)
			}

			result, err := svc.Register(context.Background(), services.RegisterInput{
				Email:         "bob@x.com",
				Password:      "secret123",
				Name:          "Bob",
				WorkspaceName: "  aCME ",
				Role:          tc.role,
			})
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.wantRole, result.User.Role)
			require.Equal(t, tc.wantJobTitle, result.User.JobTitle)
			require.Equal(t, tc.wantWorkspace, result.User.WorkspaceName)

			identity, err := issuer.VerifyJWT(result.Token)
			require.NoError(t, err)
			require.Equal(t, result.User.ID, identity.ID)
			require.Equal(t, tc.wantRole, identity.Role)
			require.Equal(t, tc.wantWorkspace, identity.WorkspaceName)
		})
	}
}

func TestRegisterErrors(t *testing.T) {
	svc, _ := newIdentityService(t, newFakeUsers())
	register(t, svc, "alice@x.com", "Acme", "")

	_, err := svc.Register(context.Background(), services.RegisterInput{Email: " ALICE@x.com", Password: "pw", WorkspaceName: "Other"})
	require.ErrorIs(t, err, services.ErrEmailTaken)
	require.Equal(t, services.KindConflict, services.KindOf(err))

	_, err = svc.Register(context.Background(), services.RegisterInput{Email: "c@x.com", Password: "pw", WorkspaceName: "   "})
	require.Equal(t, services.KindValidation, services.KindOf(err))

	_, err = svc.Register(context.Background(), services.RegisterInput{Email: "c@x.com", Password: "pw", WorkspaceName: "Acme", Role: "Owner"})
	require.Equal(t, services.KindValidation, services.KindOf(err))

	users := newFakeUsers()
	users.err = errors.New("connection reset")
	broken, _ := newIdentityService(t, users)
	_, err = broken.Register(context.Background(), services.RegisterInput{Email: "c@x.com", Password: "pw", WorkspaceName: "Acme"})
	require.Equal(t, services.KindInternal, services.KindOf(err))
}

func TestRegisterKeepsSuppliedJobTitle(t *testing.T) {
	svc, _ := newIdentityService(t, newFakeUsers())

	result, err := svc.Register(context.Background(), services.RegisterInput{
		Email:         "alice@x.com",
		Password:      "secret123",
		WorkspaceName: "Acme",
		JobTitle:      "CTO",
	})
	require.NoError(t, err)
	require.Equal(t, "CTO", result.User.JobTitle)
	require.Equal(t, types.RoleAdmin, result.User.Role)
}

func TestLoginDoesNotRevealWhichCheckFailed(t *testing.T) {
	svc, issuer := newIdentityService(t, newFakeUsers())
	register(t, svc, "alice@x.com", "Acme", types.RoleAdmin)

	_, unknownErr := svc.Login(context.Background(), "nobody@x.com", "secret123")
	_, wrongErr := svc.Login(context.Background(), "alice@x.com", "wrong")
	require.ErrorIs(t, unknownErr, services.ErrInvalidCredentials)
	require.ErrorIs(t, wrongErr, services.ErrInvalidCredentials)
	require.Equal(t, unknownErr.Error(), wrongErr.Error())

	result, err := svc.Login(context.Background(), "  Alice@X.com", "secret123")
	require.NoError(t, err)
	identity, err := issuer.VerifyJWT(result.Token)
	require.NoError(t, err)
	require.Equal(t, "alice@x.com", identity.Email)
	require.Equal(t, "Acme", identity.WorkspaceName)
}

func TestUpdateProfileTouchesOnlyNameAndJobTitle(t *testing.T) {
	users := newFakeUsers()
	svc, issuer := newIdentityService(t, users)
	result := register(t, svc, "alice@x.com", "Acme", types.RoleAdmin)
	identity, err := issuer.VerifyJWT(result.Token)
	require.NoError(t, err)

	name, title := " Alice Smith ", "CEO"
	profile, err := svc.UpdateProfile(context.Background(), identity, &name, &title)
	require.NoError(t, err)
	require.Equal(t, "Alice Smith", profile.Name)
	require.Equal(t, "CEO", profile.JobTitle)
	require.Equal(t, "alice@x.com", profile.Email)
	require.Equal(t, types.RoleAdmin, profile.Role)
	require.Equal(t, "Acme", profile.WorkspaceName)

	_, err = svc.UpdateProfile(context.Background(), types.Identity{ID: "ghost"}, &name, nil)
	require.Equal(t, services.KindNotFound, services.KindOf(err))

	// Omitting a field keeps the stored value.
	title = "Chair"
	profile, err = svc.UpdateProfile(context.Background(), identity, nil, &title)
	require.NoError(t, err)
	require.Equal(t, "Alice Smith", profile.Name)
	require.Equal(t, "Chair", profile.JobTitle)
}

func TestListMembersIsWorkspaceScoped(t *testing.T) {
	svc, _ := newIdentityService(t, newFakeUsers())
	alice := register(t, svc, "alice@x.com", "Acme", types.RoleAdmin)
	register(t, svc, "bob@x.com", "acme", types.RoleMember)
	register(t, svc, "eve@y.com", "Globex", "")

	members, err := svc.ListMembers(context.Background(), types.Identity{ID: alice.User.ID, WorkspaceName: "Acme"})
	require.NoError(t, err)
	require.Len(t, members, 2)
	for _, m := range members {
		require.Equal(t, "Acme", m.WorkspaceName)
	}
}

func TestConcurrentAdminRegistrationClaimsWorkspaceOnce(t *testing.T) {
	users := repository.NewGormUserRepo(testutil.NewTestDB(t))
	svc, _ := newIdentityService(t, users)

	names := []string{"Acme", "ACME", "acme", " AcMe "}
	errs := make([]error, len(names))

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			<-start
			_, errs[i] = svc.Register(context.Background(), services.RegisterInput{
				Email:         "owner" + string(rune('a'+i)) + "@x.com",
				Password:      "secret123",
				WorkspaceName: name,
				Role:          types.RoleAdmin,
			})
		}(i, name)
	}
	close(start)
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		require.ErrorIs(t, err, services.ErrWorkspaceTaken)
	}
	require.Equal(t, 1, succeeded)

	admins, err := users.ListByWorkspace(context.Background(), "acme")
	require.NoError(t, err)
	require.Len(t, admins, 1)
}

func TestMemberBindsToCanonicalCasingInStore(t *testing.T) {
	users := repository.NewGormUserRepo(testutil.NewTestDB(t))
	svc, _ := newIdentityService(t, users)

	register(t, svc, "alice@x.com", "Acme", types.RoleAdmin)
	bob := register(t, svc, "bob@x.com", "acme", types.RoleMember)
	require.Equal(t, "Acme", bob.User.WorkspaceName)

	carol, err := svc.Register(context.Background(), services.RegisterInput{Email: "carol@x.com", Password: "pw", WorkspaceName: "ACME", Role: types.RoleAdmin})
	require.ErrorIs(t, err, services.ErrWorkspaceTaken)
	require.Empty(t, carol.Token)
}
