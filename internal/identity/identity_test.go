package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/geocoder89/commenthub/internal/auth"
	"github.com/geocoder89/commenthub/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVerifier struct {
	claims *auth.Claims
	err    error
	seen   string
}

func (s *stubVerifier) VerifySession(token string) (*auth.Claims, error) {
	s.seen = token
	return s.claims, s.err
}

type stubFinder struct {
	users map[string]user.User
	err   error
}

func (s *stubFinder) GetByID(ctx context.Context, id string) (user.User, error) {
	if s.err != nil {
		return user.User{}, s.err
	}
	u, ok := s.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"":               "",
		"Bearer":         "",
		"Bearer ":        "",
		"Bearer abc.def": "abc.def",
		"abc.def":        "abc.def",
		"  Bearer xyz  ": "xyz",
	}

	for in, want := range cases {
		assert.Equal(t, want, BearerToken(in), "header %q", in)
	}
}

func TestResolve_NoHeaderIsGuest(t *testing.T) {
	verifier := &stubVerifier{err: errors.New("should not be called")}
	r := NewResolver(verifier, &stubFinder{})

	id, err := r.Resolve(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, id.IsGuest())
	assert.Equal(t, user.RoleGuest, id.Role)
	assert.Empty(t, verifier.seen)
}

func TestResolve_WithStoredUser(t *testing.T) {
	verifier := &stubVerifier{claims: &auth.Claims{UserID: "u1", Role: user.RoleUser}}
	finder := &stubFinder{users: map[string]user.User{"u1": {ID: "u1", Name: "A"}}}
	r := NewResolver(verifier, finder)

	id, err := r.Resolve(context.Background(), "Bearer tok")
	require.NoError(t, err)
	assert.Equal(t, "tok", verifier.seen)
	assert.Equal(t, KindAuthenticated, id.Kind())
	assert.True(t, id.HasRecord())

	u, err := id.RequireUser()
	require.NoError(t, err)
	assert.Equal(t, "A", u.Name)
}

func TestResolve_UserGoneKeepsClaims(t *testing.T) {
	verifier := &stubVerifier{claims: &auth.Claims{UserID: "gone", Role: user.RoleAdmin}}
	r := NewResolver(verifier, &stubFinder{})

	id, err := r.Resolve(context.Background(), "tok")
	require.NoError(t, err)
	assert.False(t, id.IsGuest())
	assert.False(t, id.HasRecord())
	assert.Equal(t, user.RoleAdmin, id.Role)

	_, err = id.RequireUser()
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestResolve_Errors(t *testing.T) {
	r := NewResolver(&stubVerifier{err: auth.ErrExpiredToken}, &stubFinder{})
	_, err := r.Resolve(context.Background(), "Bearer tok")
	assert.ErrorIs(t, err, auth.ErrExpiredToken)

	storeDown := errors.New("store down")
	r = NewResolver(&stubVerifier{claims: &auth.Claims{UserID: "u1"}}, &stubFinder{err: storeDown})
	_, err = r.Resolve(context.Background(), "Bearer tok")
	assert.ErrorIs(t, err, storeDown)
}

func TestGuest_RequireUser(t *testing.T) {
	_, err := Guest().RequireUser()
	assert.ErrorIs(t, err, ErrMissingToken)
}
