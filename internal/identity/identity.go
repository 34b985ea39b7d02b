package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/geocoder89/commenthub/internal/auth"
	"github.com/geocoder89/commenthub/internal/domain/user"
)

var (
	ErrMissingToken = errors.New("auth token is required")
	ErrUserNotFound = errors.New("token user no longer exists")
)

type Kind int

const (
	KindGuest Kind = iota
	KindAuthenticated
)

// Identity is resolved once per request. A guest carries nothing; an authenticated
// identity carries the token claims and, when it still exists, the user record.
type Identity struct {
	kind   Kind
	UserID string
	Role   user.Role
	User   *user.User
}

func Guest() Identity {
	return Identity{kind: KindGuest, Role: user.RoleGuest}
}

func Authenticated(userID string, role user.Role, record *user.User) Identity {
	return Identity{kind: KindAuthenticated, UserID: userID, Role: role, User: record}
}

func (i Identity) Kind() Kind {
	return i.kind
}

func (i Identity) IsGuest() bool {
	return i.kind == KindGuest
}

// HasRecord reports whether the token resolved to a stored user.
func (i Identity) HasRecord() bool {
	return i.kind == KindAuthenticated && i.User != nil
}

// RequireUser returns the backing record for endpoints that need a live account.
func (i Identity) RequireUser() (user.User, error) {
	if i.IsGuest() {
		return user.User{}, ErrMissingToken
	}
	if i.User == nil {
		return user.User{}, ErrUserNotFound
	}
	return *i.User, nil
}

type SessionVerifier interface {
	VerifySession(token string) (*auth.Claims, error)
}

type UserFinder interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

type Resolver struct {
	tokens SessionVerifier
	users  UserFinder
}

func NewResolver(tokens SessionVerifier, users UserFinder) *Resolver {
	return &Resolver{tokens: tokens, users: users}
}

// BearerToken strips an optional "Bearer " prefix.
func BearerToken(header string) string {
	raw := strings.TrimSpace(header)
	if raw == "Bearer" {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))
}

// Resolve maps an Authorization header to an Identity. A missing token is a guest,
// not an error. Banned or deleted users are not rejected here.
func (r *Resolver) Resolve(ctx context.Context, header string) (Identity, error) {
	raw := BearerToken(header)
	if raw == "" {
		return Guest(), nil
	}

	claims, err := r.tokens.VerifySession(raw)
	if err != nil {
		return Identity{}, err
	}

	u, err := r.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return Authenticated(claims.UserID, claims.Role, nil), nil
		}
		return Identity{}, fmt.Errorf("resolve identity: %w", err)
	}

	return Authenticated(claims.UserID, claims.Role, &u), nil
}
