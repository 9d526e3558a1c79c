package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/taskpulse-dev/taskpulse/internal/auth"
	"github.com/taskpulse-dev/taskpulse/internal/models"
	"github.com/taskpulse-dev/taskpulse/internal/repository"
	"github.com/taskpulse-dev/taskpulse/internal/types"
)

// TokenIssuer signs session credentials for an identity.
type TokenIssuer interface {
	GenerateJWT(identity types.Identity) (string, error)
}

type RegisterInput struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	Name          string `json:"name"`
	WorkspaceName string `json:"workspaceName"`
	JobTitle      string `json:"jobTitle"`
	// Role is optional; empty lets the workspace state decide.
	Role string `json:"role"`
}

// PublicUser is the outward profile view. It never carries the password hash.
type PublicUser struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	WorkspaceName string `json:"workspaceName"`
	JobTitle      string `json:"jobTitle"`
}

type AuthResult struct {
	Token string     `json:"token"`
	User  PublicUser `json:"user"`
}

func NewPublicUser(user *models.User) PublicUser {
	return PublicUser{
		ID:            user.ID,
		Name:          user.Name,
		Email:         user.Email,
		Role:          user.Role,
		WorkspaceName: user.WorkspaceName,
		JobTitle:      user.JobTitle,
	}
}

func identityOf(user *models.User) types.Identity {
	return types.Identity{
		ID:            user.ID,
		Email:         user.Email,
		Role:          user.Role,
		WorkspaceName: user.WorkspaceName,
		JobTitle:      user.JobTitle,
	}
}

type IdentityService struct {
	users  repository.UserRepository
	tokens TokenIssuer
	logger *zap.Logger
}

func NewIdentityService(users repository.UserRepository, tokens TokenIssuer, logger *zap.Logger) *IdentityService {
	return &IdentityService{users: users, tokens: tokens, logger: orNop(logger)}
}

// Register creates a user and binds it to a workspace. An Admin founds a new
// workspace; a Member joins an existing one under its canonical casing.
func (s *IdentityService) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	email := types.NormalizeEmail(in.Email)
	workspaceName := strings.TrimSpace(in.WorkspaceName)

	switch {
	case email == "":
		return AuthResult{}, validationError("Email is required")
	case in.Password == "":
		return AuthResult{}, validationError("Password is required")
	case workspaceName == "":
		return AuthResult{}, validationError("Workspace name is required")
	}
	if in.Role != "" && in.Role != types.RoleAdmin && in.Role != types.RoleMember {
		return AuthResult{}, validationError("Role must be Admin or Member")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return AuthResult{}, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return AuthResult{}, internalError("lookup email", err)
	}

	existing, err := s.users.FindByWorkspace(ctx, workspaceName)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return AuthResult{}, internalError("lookup workspace", err)
	}
	workspaceExists := existing != nil

	role := in.Role
	switch {
	case role == types.RoleMember && !workspaceExists:
		return AuthResult{}, ErrWorkspaceNotFound
	case role == types.RoleAdmin && workspaceExists:
		return AuthResult{}, ErrWorkspaceTaken
	case role == "" && workspaceExists:
		role = types.RoleMember
	case role == "":
		role = types.RoleAdmin
	}

	if workspaceExists {
		workspaceName = existing.WorkspaceName
	}

	jobTitle := strings.TrimSpace(in.JobTitle)
	if jobTitle == "" {
		jobTitle = types.DefaultJobTitle(role)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return AuthResult{}, internalError("hash password", err)
	}

	user := &models.User{
		Name:          strings.TrimSpace(in.Name),
		Email:         email,
		PasswordHash:  hash,
		Role:          role,
		JobTitle:      jobTitle,
		WorkspaceName: workspaceName,
	}

	if role == types.RoleAdmin {
		err = s.users.CreateOwner(ctx, user)
	} else {
		err = s.users.Create(ctx, user)
	}
	switch {
	case errors.Is(err, repository.ErrDuplicateEmail):
		return AuthResult{}, ErrEmailTaken
	case errors.Is(err, repository.ErrDuplicateWorkspace):
		return AuthResult{}, ErrWorkspaceTaken
	case err != nil:
		return AuthResult{}, internalError("create user", err)
	}

	result, err := s.issue(user)
	if err != nil {
		return AuthResult{}, err
	}

	audit(s.logger, "user.registered", "user_id", user.ID, "role", user.Role, "workspace", user.WorkspaceName)
	return result, nil
}

// Login never reveals whether the email or the password was wrong.
func (s *IdentityService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, types.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, internalError("lookup email", err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		audit(s.logger, "password.login.failed", "user_id", user.ID)
		return AuthResult{}, ErrInvalidCredentials
	}

	result, err := s.issue(user)
	if err != nil {
		return AuthResult{}, err
	}

	audit(s.logger, "password.login.success", "user_id", user.ID, "workspace", user.WorkspaceName)
	return result, nil
}

// UpdateProfile changes only the caller's own name and job title. A nil
// field keeps its stored value.
func (s *IdentityService) UpdateProfile(ctx context.Context, identity types.Identity, name, jobTitle *string) (PublicUser, error) {
	user, err := s.users.UpdateProfile(ctx, identity.ID, repository.ProfileChanges{
		Name:     trimmed(name),
		JobTitle: trimmed(jobTitle),
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return PublicUser{}, &Error{Kind: KindNotFound, Message: "User not found"}
		}
		return PublicUser{}, internalError("update profile", err)
	}

	audit(s.logger, "profile.updated", "user_id", user.ID)
	return NewPublicUser(user), nil
}

// ListMembers returns every user in the caller's workspace.
func (s *IdentityService) ListMembers(ctx context.Context, identity types.Identity) ([]PublicUser, error) {
	users, err := s.users.ListByWorkspace(ctx, identity.WorkspaceName)
	if err != nil {
		return nil, internalError("list members", err)
	}

	members := make([]PublicUser, 0, len(users))
	for i := range users {
		members = append(members, NewPublicUser(&users[i]))
	}
	return members, nil
}

func (s *IdentityService) issue(user *models.User) (AuthResult, error) {
	token, err := s.tokens.GenerateJWT(identityOf(user))
	if err != nil {
		return AuthResult{}, internalError("sign token", err)
	}
	return AuthResult{Token: token, User: NewPublicUser(user)}, nil
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	return &v
}
