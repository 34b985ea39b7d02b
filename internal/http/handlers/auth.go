package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/commenthub/internal/config"
	"github.com/geocoder89/commenthub/internal/domain/user"
	"github.com/geocoder89/commenthub/internal/http/middlewares"
	"github.com/geocoder89/commenthub/internal/identity"
	"github.com/geocoder89/commenthub/internal/service"
	"github.com/gin-gonic/gin"
)

const storeTimeout = 3 * time.Second

type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
	Identity(ctx context.Context, id identity.Identity) (user.User, error)
	ChangePassword(ctx context.Context, id identity.Identity, oldPassword, newPassword string) error
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, resetToken, newPassword string) error
}

// AuthRecorder counts credential flows; observability.Prom satisfies it.
type AuthRecorder interface {
	RecordAuth(event, result string)
}

type nopRecorder struct{}

func (nopRecorder) RecordAuth(string, string) {}

type AuthHandler struct {
	auth    Authenticator
	metrics AuthRecorder
}

func NewAuthHandler(auth Authenticator, metrics AuthRecorder) *AuthHandler {
	if metrics == nil {
		metrics = nopRecorder{}
	}
	return &AuthHandler{auth: auth, metrics: metrics}
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	token, err := h.auth.Login(cctx, req.Email, req.Password)
	h.record("login", err)

	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"accessToken": token,
	})
}

func (h *AuthHandler) Identity(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	u, err := h.auth.Identity(cctx, middlewares.IdentityFromContext(ctx))
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": u})
}

func (h *AuthHandler) ChangePassword(ctx *gin.Context) {
	var req user.ChangePasswordRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	err := h.auth.ChangePassword(cctx, middlewares.IdentityFromContext(ctx), req.OldPassword, req.NewPassword)
	h.record("change_password", err)

	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"msg": "Password changed successfully"})
}

// ForgotPassword returns the reset token in the body; mail delivery is not part
// of this service.
func (h *AuthHandler) ForgotPassword(ctx *gin.Context) {
	var req user.ForgotPasswordRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	token, err := h.auth.ForgotPassword(cctx, req.Email)
	h.record("forgot_password", err)

	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"resetPasswordToken": token})
}

func (h *AuthHandler) ResetPassword(ctx *gin.Context) {
	var req user.ResetPasswordRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	err := h.auth.ResetPassword(cctx, req.ResetPasswordToken, req.NewPassword)
	h.record("reset_password", err)

	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"msg": "Password reset successfully"})
}

func (h *AuthHandler) record(event string, err error) {
	h.metrics.RecordAuth(event, authResult(err))
}

func authResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrOldPasswordMismatch),
		errors.Is(err, service.ErrAccountBanned),
		errors.Is(err, service.ErrAccountDeleted),
		errors.Is(err, service.ErrAccountDisabled),
		errors.Is(err, service.ErrResetTokenInvalid),
		errors.Is(err, user.ErrEmailTaken),
		errors.Is(err, user.ErrNotFound):
		return "rejected"
	default:
		return "error"
	}
}
