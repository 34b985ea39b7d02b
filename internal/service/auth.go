package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/geocoder89/commenthub/internal/config"
	"github.com/geocoder89/commenthub/internal/domain/user"
	"github.com/geocoder89/commenthub/internal/identity"
	"github.com/geocoder89/commenthub/internal/notifications"
	"github.com/geocoder89/commenthub/internal/policy"
	"github.com/geocoder89/commenthub/internal/security"
)

type AuthService struct {
	users    UserStore
	tokens   TokenCodec
	notifier notifications.Notifier
	log      *slog.Logger
}

func NewAuthService(users UserStore, tokens TokenCodec, notifier notifications.Notifier, log *slog.Logger) *AuthService {
	if log == nil {
		log = slog.Default()
	}
	return &AuthService{users: users, tokens: tokens, notifier: notifier, log: log}
}

// Login checks account state before the password so banned and deleted users
// get a specific message.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return "", err
	}

	if u.IsDeleted {
		return "", ErrAccountDeleted
	}
	if u.IsBanned {
		return "", ErrAccountBanned
	}

	ok, err := security.PasswordMatches(u.PasswordHash, password)
	if err != nil {
		return "", fmt.Errorf("login %s: %w", u.ID, err)
	}
	if !ok {
		return "", ErrInvalidCredentials
	}

	return s.tokens.IssueSession(u.ID, u.Role)
}

// Identity returns the caller's own record.
func (s *AuthService) Identity(ctx context.Context, id identity.Identity) (user.User, error) {
	return id.RequireUser()
}

func (s *AuthService) ChangePassword(ctx context.Context, id identity.Identity, oldPassword, newPassword string) error {
	if id.IsGuest() {
		return identity.ErrMissingToken
	}
	if err := policy.Moderate(id, id.UserID); err != nil {
		return err
	}

	u, err := s.users.GetByID(ctx, id.UserID)
	if err != nil {
		return err
	}

	ok, err := security.PasswordMatches(u.PasswordHash, oldPassword)
	if err != nil {
		return fmt.Errorf("change password %s: %w", u.ID, err)
	}
	if !ok {
		return ErrOldPasswordMismatch
	}

	return s.setPassword(ctx, u.ID, newPassword)
}

// ForgotPassword issues a reset token for the account behind email. The token is
// returned to the caller and also handed to the notifier; a notifier failure is
// logged and does not fail the request.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	u, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return "", err
	}

	token, err := s.tokens.IssueReset(u.ID)
	if err != nil {
		return "", err
	}

	if s.notifier != nil {
		err = s.notifier.SendPasswordReset(ctx, notifications.SendPasswordResetInput{
			UserID:    u.ID,
			Email:     u.Email,
			Name:      u.Name,
			Token:     token,
			ExpiresAt: time.Now().UTC().Add(config.ResetTokenTTL),
		})
		if err != nil {
			s.log.WarnContext(ctx, "password reset notification failed", "user_id", u.ID, "err", err)
		}
	}

	return token, nil
}

// ResetPassword looks the user up by the primary key carried in the reset token.
func (s *AuthService) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	claims, err := s.tokens.VerifyReset(resetToken)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrResetTokenInvalid, err)
	}

	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return err
	}

	return s.setPassword(ctx, u.ID, newPassword)
}

func (s *AuthService) setPassword(ctx context.Context, userID, plain string) error {
	hash, err := security.HashPassword(plain)
	if err != nil {
		return err
	}

	_, err = s.users.Update(ctx, userID, user.Patch{PasswordHash: &hash})
	return err
}
