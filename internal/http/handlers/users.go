package handlers

import (
	"context"
	"net/http"

	"github.com/geocoder89/commenthub/internal/config"
	"github.com/geocoder89/commenthub/internal/domain/user"
	"github.com/geocoder89/commenthub/internal/http/middlewares"
	"github.com/geocoder89/commenthub/internal/identity"
	"github.com/gin-gonic/gin"
)

type UserAccounts interface {
	Register(ctx context.Context, name, email, password string) (string, error)
	List(ctx context.Context, id identity.Identity) ([]user.User, error)
	UpdateUsername(ctx context.Context, id identity.Identity, name string) (user.User, error)
	SoftDeleteSelf(ctx context.Context, id identity.Identity) (user.User, error)
	SoftDelete(ctx context.Context, id identity.Identity, targetID string) (user.User, error)
	SetBanned(ctx context.Context, id identity.Identity, targetID string, banned bool) (user.User, error)
}

type UsersHandler struct {
	users   UserAccounts
	metrics AuthRecorder
}

func NewUsersHandler(users UserAccounts, metrics AuthRecorder) *UsersHandler {
	if metrics == nil {
		metrics = nopRecorder{}
	}
	return &UsersHandler{users: users, metrics: metrics}
}

func (h *UsersHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	token, err := h.users.Register(cctx, req.Name, req.Email, req.Password)
	h.metrics.RecordAuth("register", authResult(err))

	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"accessToken": token})
}

func (h *UsersHandler) List(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	users, err := h.users.List(cctx, middlewares.IdentityFromContext(ctx))
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"users": users})
}

// UpdateUsername and DeleteSelf return the bare user record, not wrapped.
func (h *UsersHandler) UpdateUsername(ctx *gin.Context) {
	var req user.UpdateUsernameRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	u, err := h.users.UpdateUsername(cctx, middlewares.IdentityFromContext(ctx), req.Username)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, u)
}

func (h *UsersHandler) DeleteSelf(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	u, err := h.users.SoftDeleteSelf(cctx, middlewares.IdentityFromContext(ctx))
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, u)
}

func (h *UsersHandler) SetBanned(ctx *gin.Context) {
	var req user.SetBannedRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	u, err := h.users.SetBanned(cctx, middlewares.IdentityFromContext(ctx), ctx.Param("id"), *req.IsBanned)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": u})
}

func (h *UsersHandler) Delete(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	u, err := h.users.SoftDelete(cctx, middlewares.IdentityFromContext(ctx), ctx.Param("id"))
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": u})
}
