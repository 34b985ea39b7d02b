package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/geocoder89/commenthub/internal/config"
	"github.com/geocoder89/commenthub/internal/domain/user"
	"github.com/golang-jwt/jwt/v5"
)

const (
	TypeSession = "session"
	TypeReset   = "reset"
)

var (
	ErrEncoding     = errors.New("token encoding failed")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

type Claims struct {
	UserID    string    `json:"userId"`
	Role      user.Role `json:"userType,omitempty"`
	TokenType string    `json:"typ"`
	jwt.RegisteredClaims
}

type signer struct {
	secret []byte
	ttl    time.Duration
	typ    string
}

// Codec issues and verifies the two token families. Session and reset tokens use
// different secrets and a typ claim, so neither verifies as the other.
type Codec struct {
	session signer
	reset   signer
	now     func() time.Time
}

type Option func(*Codec)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		c.now = now
	}
}

func NewCodec(sessionSecret string, sessionTTL time.Duration, resetSecret string, opts ...Option) *Codec {
	c := &Codec{
		session: signer{secret: []byte(sessionSecret), ttl: sessionTTL, typ: TypeSession},
		reset:   signer{secret: []byte(resetSecret), ttl: config.ResetTokenTTL, typ: TypeReset},
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func NewCodecFromConfig(cfg config.Config, opts ...Option) *Codec {
	return NewCodec(cfg.JWTSecret, cfg.JWTExpiration, cfg.JWTResetPasswordSecret, opts...)
}

func (c *Codec) IssueSession(userID string, role user.Role) (string, error) {
	return c.issue(c.session, userID, role)
}

func (c *Codec) IssueReset(userID string) (string, error) {
	return c.issue(c.reset, userID, "")
}

// VerifySession also requires a known role claim; the policy ranks roles and
// an unknown one would otherwise rank as nothing.
func (c *Codec) VerifySession(tokenStr string) (*Claims, error) {
	claims, err := c.verify(c.session, tokenStr)
	if err != nil {
		return nil, err
	}
	if !claims.Role.IsValid() || claims.Role == user.RoleGuest {
		return nil, fmt.Errorf("%w: unexpected userType %q", ErrInvalidToken, claims.Role)
	}
	return claims, nil
}

func (c *Codec) VerifyReset(tokenStr string) (*Claims, error) {
	return c.verify(c.reset, tokenStr)
}

func (c *Codec) issue(s signer, userID string, role user.Role) (string, error) {
	if len(s.secret) == 0 {
		return "", fmt.Errorf("%w: empty %s secret", ErrEncoding, s.typ)
	}

	now := c.now().UTC()

	claims := Claims{
		UserID:    userID,
		Role:      role,
		TokenType: s.typ,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncoding, err)
	}

	return signed, nil
}

func (c *Codec) verify(s signer, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		// Enforce HS256
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(c.now), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.TokenType != s.typ {
		return nil, fmt.Errorf("%w: unexpected token type %q", ErrInvalidToken, claims.TokenType)
	}

	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: missing userId", ErrInvalidToken)
	}

	return claims, nil
}
