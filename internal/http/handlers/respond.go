package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/geocoder89/commenthub/internal/auth"
	"github.com/geocoder89/commenthub/internal/domain/comment"
	"github.com/geocoder89/commenthub/internal/domain/user"
	"github.com/geocoder89/commenthub/internal/http/middlewares"
	"github.com/geocoder89/commenthub/internal/identity"
	"github.com/geocoder89/commenthub/internal/policy"
	"github.com/geocoder89/commenthub/internal/service"
	"github.com/gin-gonic/gin"
)

type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	if id := ctx.GetString(middlewares.CtxRequestID); id != "" {
		return id
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	ctx.JSON(status, gin.H{
		"error": APIError{
			Code:      code,
			Message:   message,
			RequestID: requestIDFrom(ctx),
			Details:   details,
		},
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, "invalid_request", message, details)
}

func RespondUnAuthorized(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusUnauthorized, code, message, nil)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, "not_found", message, nil)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, "internal_error", message, nil)
}

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// Order matters: the first match wins. Forbidden stays 401 because existing
// clients treat it the same as a missing token.
var errorMappings = []errorMapping{
	{service.ErrValidation, http.StatusBadRequest, "invalid_request", ""},
	{identity.ErrMissingToken, http.StatusUnauthorized, "missing_token", "Auth token is required"},
	{auth.ErrExpiredToken, http.StatusUnauthorized, "token_expired", "Auth token has expired"},
	{auth.ErrInvalidToken, http.StatusUnauthorized, "invalid_token", "Invalid auth token"},
	{policy.ErrForbidden, http.StatusUnauthorized, "forbidden", "Invalid auth token"},
	{identity.ErrUserNotFound, http.StatusNotFound, "not_found", "User not found"},
	{user.ErrNotFound, http.StatusNotFound, "not_found", "User not found"},
	{comment.ErrNotFound, http.StatusNotFound, "not_found", "Comment not found"},
	{user.ErrEmailTaken, http.StatusBadRequest, "user_exists", "User already exists"},
	{service.ErrAccountDisabled, http.StatusUnauthorized, "account_disabled", "User already exists, contact admin to enable the profile"},
	{service.ErrAccountDeleted, http.StatusUnauthorized, "account_deleted", "User profile is deleted"},
	{service.ErrAccountBanned, http.StatusUnauthorized, "account_banned", "User profile is banned by admin"},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials", "Invalid Credentials"},
	{service.ErrOldPasswordMismatch, http.StatusBadRequest, "invalid_credentials", "Invalid Credentials"},
	{service.ErrResetTokenInvalid, http.StatusUnauthorized, "invalid_reset_token", "Invalid or expired reset password token"},
}

// RespondServiceError writes the response for an error returned by a service.
// Anything unmapped is logged and reported as a generic 500.
func RespondServiceError(ctx *gin.Context, err error) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}

		message := m.message
		if message == "" {
			message = err.Error()
		}
		RespondError(ctx, m.status, m.code, message, nil)
		return
	}

	_ = ctx.Error(err)
	slog.Default().ErrorContext(ctx.Request.Context(), "request failed",
		"err", err,
		"route", ctx.FullPath(),
		"request_id", requestIDFrom(ctx),
	)
	RespondInternal(ctx, "Server error")
}
