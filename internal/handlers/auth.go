package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taskpulse-dev/taskpulse/internal/services"
	"github.com/taskpulse-dev/taskpulse/internal/types"
	"github.com/taskpulse-dev/taskpulse/internal/utils"
)

type IdentityService interface {
	Register(ctx context.Context, in services.RegisterInput) (services.AuthResult, error)
	Login(ctx context.Context, email, password string) (services.AuthResult, error)
	UpdateProfile(ctx context.Context, identity types.Identity, name, jobTitle *string) (services.PublicUser, error)
	ListMembers(ctx context.Context, identity types.Identity) ([]services.PublicUser, error)
}

type RegisterRequest struct {
	Email         string `json:"email" binding:"required"`
	Password      string `json:"password" binding:"required"`
	Name          string `json:"name"`
	WorkspaceName string `json:"workspaceName" binding:"required"`
	JobTitle      string `json:"jobTitle"`
	Role          string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest fields are optional; omitted ones stay unchanged.
type UpdateProfileRequest struct {
	Name     *string `json:"name"`
	JobTitle *string `json:"jobTitle"`
}

type AuthHandler struct {
	identity IdentityService
	logger   *zap.Logger
}

func NewAuthHandler(identity IdentityService, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{identity: identity, logger: logger}
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var body RegisterRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		badRequest(ctx, "Email, password and workspace name are required")
		return
	}

	result, err := h.identity.Register(ctx.Request.Context(), services.RegisterInput{
		Email:         body.Email,
		Password:      body.Password,
		Name:          body.Name,
		WorkspaceName: body.WorkspaceName,
		JobTitle:      body.JobTitle,
		Role:          body.Role,
	})

	if err != nil {
		respondError(ctx, h.logger, err)
		return
	}

	ctx.JSON(http.StatusCreated, result)
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var body LoginRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		badRequest(ctx, "Email and password are required")
		return
	}

	result, err := h.identity.Login(ctx.Request.Context(), body.Email, body.Password)

	if err != nil {
		respondError(ctx, h.logger, err)
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// Me echoes the identity carried by the credential.
func (h *AuthHandler) Me(ctx *gin.Context) {
	identity, err := utils.GetCurrentIdentity(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": identity})
}

func (h *AuthHandler) ListUsers(ctx *gin.Context) {
	identity, err := utils.GetCurrentIdentity(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	members, err := h.identity.ListMembers(ctx.Request.Context(), identity)

	if err != nil {
		respondError(ctx, h.logger, err)
		return
	}

	ctx.JSON(http.StatusOK, members)
}

func (h *AuthHandler) UpdateProfile(ctx *gin.Context) {
	identity, err := utils.GetCurrentIdentity(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var body UpdateProfileRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		badRequest(ctx, "Invalid request")
		return
	}

	profile, err := h.identity.UpdateProfile(ctx.Request.Context(), identity, body.Name, body.JobTitle)

	if err != nil {
		respondError(ctx, h.logger, err)
		return
	}

	ctx.JSON(http.StatusOK, profile)
}
