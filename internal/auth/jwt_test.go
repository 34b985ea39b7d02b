package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/geocoder89/commenthub/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (f *fakeClock) Now() time.Time { return f.t }

func newTestCodec(clock *fakeClock) *Codec {
	return NewCodec("session-secret", time.Hour, "reset-secret", WithClock(clock.Now))
}

func TestCodec_SessionRoundTrip(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	c := newTestCodec(clock)

	tok, err := c.IssueSession("user-1", user.RoleAdmin)
	require.NoError(t, err)

	claims, err := c.VerifySession(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, user.RoleAdmin, claims.Role)
	assert.Equal(t, TypeSession, claims.TokenType)
	assert.True(t, clock.t.Add(time.Hour).Equal(claims.ExpiresAt.Time))
}

func TestCodec_DeterministicWithFixedClock(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	c := newTestCodec(clock)

	a, err := c.IssueSession("user-1", user.RoleUser)
	require.NoError(t, err)
	b, err := c.IssueSession("user-1", user.RoleUser)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestCodec_SecretsDoNotCrossVerify(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	c := newTestCodec(clock)

	session, err := c.IssueSession("user-1", user.RoleUser)
	require.NoError(t, err)
	reset, err := c.IssueReset("user-1")
	require.NoError(t, err)

	_, err = c.VerifyReset(session)
	assert.True(t, errors.Is(err, ErrInvalidToken), "got %v", err)

	_, err = c.VerifySession(reset)
	assert.True(t, errors.Is(err, ErrInvalidToken), "got %v", err)
}

func TestCodec_SameSecretStillRejectsWrongType(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	c := NewCodec("shared", time.Hour, "shared", WithClock(clock.Now))

	reset, err := c.IssueReset("user-1")
	require.NoError(t, err)

	_, err = c.VerifySession(reset)
	assert.True(t, errors.Is(err, ErrInvalidToken), "got %v", err)
}

func TestCodec_Expired(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 2, 3, 0, 0, 0, time.UTC)}
	c := newTestCodec(clock)

	reset, err := c.IssueReset("user-1")
	require.NoError(t, err)

	clock.t = clock.t.Add(4 * time.Minute)
	_, err = c.VerifyReset(reset)
	require.NoError(t, err)

	clock.t = clock.t.Add(2 * time.Minute)
	_, err = c.VerifyReset(reset)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestCodec_TamperedSignature(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	c := newTestCodec(clock)

	tok, err := c.IssueSession("user-1", user.RoleUser)
	require.NoError(t, err)

	other := NewCodec("another-secret", time.Hour, "reset-secret", WithClock(clock.Now))
	_, err = other.VerifySession(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = c.VerifySession("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCodec_EmptySecret(t *testing.T) {
	c := NewCodec("", time.Hour, "reset-secret")

	_, err := c.IssueSession("user-1", user.RoleUser)
	assert.ErrorIs(t, err, ErrEncoding)
}

func TestCodec_SessionRejectsUnknownRole(t *testing.T) {
	c := newTestCodec(&fakeClock{t: time.Now()})

	for _, role := range []user.Role{"", user.RoleGuest, "superuser"} {
		tok, err := c.IssueSession("user-1", role)
		require.NoError(t, err)

		_, err = c.VerifySession(tok)
		assert.ErrorIs(t, err, ErrInvalidToken, "role %q", role)
	}
}
