package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/geocoder89/commenthub/internal/domain/user"
	"github.com/geocoder89/commenthub/internal/identity"
	"github.com/geocoder89/commenthub/internal/policy"
	"github.com/geocoder89/commenthub/internal/security"
)

type UserService struct {
	users  UserStore
	tokens TokenCodec
}

func NewUserService(users UserStore, tokens TokenCodec) *UserService {
	return &UserService{users: users, tokens: tokens}
}

// Register creates a role=user account and returns a session token for it.
// An email already held by any account, active or not, is a conflict.
func (s *UserService) Register(ctx context.Context, name, email, password string) (string, error) {
	email = normalizeEmail(email)

	existing, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Disabled() {
			return "", ErrAccountDisabled
		}
		return "", user.ErrEmailTaken
	case !errors.Is(err, user.ErrNotFound):
		return "", err
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return "", err
	}

	created, err := s.users.Create(ctx, user.New(strings.TrimSpace(name), email, hash, user.RoleUser))
	if err != nil {
		return "", err
	}

	return s.tokens.IssueSession(created.ID, created.Role)
}

// List returns every role=user account; admins are not listed.
func (s *UserService) List(ctx context.Context, id identity.Identity) ([]user.User, error) {
	if err := requireAdmin(id); err != nil {
		return nil, err
	}
	return s.users.ListByRole(ctx, user.RoleUser)
}

func (s *UserService) UpdateUsername(ctx context.Context, id identity.Identity, name string) (user.User, error) {
	self, err := s.self(id)
	if err != nil {
		return user.User{}, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return user.User{}, ErrValidation
	}

	return s.users.Update(ctx, self.ID, user.Patch{Name: &name})
}

func (s *UserService) SoftDeleteSelf(ctx context.Context, id identity.Identity) (user.User, error) {
	self, err := s.self(id)
	if err != nil {
		return user.User{}, err
	}
	return s.softDelete(ctx, self.ID)
}

func (s *UserService) SoftDelete(ctx context.Context, id identity.Identity, targetID string) (user.User, error) {
	if err := requireAdmin(id); err != nil {
		return user.User{}, err
	}
	return s.softDelete(ctx, targetID)
}

func (s *UserService) SetBanned(ctx context.Context, id identity.Identity, targetID string, banned bool) (user.User, error) {
	if err := requireAdmin(id); err != nil {
		return user.User{}, err
	}
	return s.users.Update(ctx, targetID, user.Patch{IsBanned: &banned})
}

func (s *UserService) softDelete(ctx context.Context, userID string) (user.User, error) {
	deleted := true
	now := time.Now().UTC()
	return s.users.Update(ctx, userID, user.Patch{IsDeleted: &deleted, DeletedAt: &now})
}

func (s *UserService) self(id identity.Identity) (user.User, error) {
	if id.IsGuest() {
		return user.User{}, identity.ErrMissingToken
	}
	if err := policy.Moderate(id, id.UserID); err != nil {
		return user.User{}, err
	}
	return id.RequireUser()
}

func requireAdmin(id identity.Identity) error {
	if id.IsGuest() {
		return identity.ErrMissingToken
	}
	return policy.Admin(id)
}
