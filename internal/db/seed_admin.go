package db

import (
	"context"
	"errors"
	"strings"

	"github.com/geocoder89/commenthub/internal/config"
	"github.com/geocoder89/commenthub/internal/domain/user"
	"github.com/geocoder89/commenthub/internal/security"
)

type AdminStore interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	Create(ctx context.Context, u user.User) (user.User, error)
}

// EnsureAdminUser creates the configured admin account when it is missing.
// Registration only ever creates role=user, so this is how an admin comes to exist.
func EnsureAdminUser(ctx context.Context, users AdminStore, cfg config.Config) (bool, error) {
	if !cfg.SeedAdmin() {
		return false, nil
	}

	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))

	_, err := users.GetByEmail(ctx, email)

	if err == nil {
		return false, nil
	}

	if !errors.Is(err, user.ErrNotFound) {
		return false, err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return false, err
	}

	_, err = users.Create(ctx, user.New(cfg.AdminName, email, hash, user.RoleAdmin))

	if errors.Is(err, user.ErrEmailTaken) {
		// lost a race with another instance
		return false, nil
	}

	return err == nil, err
}
