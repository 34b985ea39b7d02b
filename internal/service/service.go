package service

import (
	"context"
	"errors"
	"strings"

	"github.com/geocoder89/commenthub/internal/auth"
	"github.com/geocoder89/commenthub/internal/domain/comment"
	"github.com/geocoder89/commenthub/internal/domain/user"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrAccountDeleted      = errors.New("user profile is deleted")
	ErrAccountBanned       = errors.New("user profile is banned by admin")
	ErrAccountDisabled     = errors.New("user already exists, contact admin to enable the profile")
	ErrOldPasswordMismatch = errors.New("old password does not match")
	ErrResetTokenInvalid   = errors.New("invalid or expired reset password token")
)

type UserStore interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	Create(ctx context.Context, u user.User) (user.User, error)
	Update(ctx context.Context, id string, patch user.Patch) (user.User, error)
	ListByRole(ctx context.Context, role user.Role) ([]user.User, error)
}

type CommentStore interface {
	GetByID(ctx context.Context, id string) (comment.Comment, error)
	Create(ctx context.Context, c comment.Comment) (comment.Comment, error)
	Update(ctx context.Context, id string, patch comment.Patch) (comment.Comment, error)
	ListActive(ctx context.Context) ([]comment.Comment, error)
}

// TokenCodec is the part of auth.Codec the services use.
type TokenCodec interface {
	IssueSession(userID string, role user.Role) (string, error)
	IssueReset(userID string) (string, error)
	VerifyReset(token string) (*auth.Claims, error)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
