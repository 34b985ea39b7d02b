package middlewares

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/geocoder89/commenthub/internal/actorctx"
	"github.com/geocoder89/commenthub/internal/auth"
	"github.com/geocoder89/commenthub/internal/identity"
	"github.com/gin-gonic/gin"
)

// Keep this small interface so tests can fake it easily.
type IdentityResolver interface {
	Resolve(ctx context.Context, header string) (identity.Identity, error)
}

type AuthMiddleware struct {
	resolver IdentityResolver
	log      *slog.Logger
}

func NewAuthMiddleware(resolver IdentityResolver, log *slog.Logger) *AuthMiddleware {
	if log == nil {
		log = slog.Default()
	}
	return &AuthMiddleware{resolver: resolver, log: log}
}

// ResolveIdentity is mounted only on routes that read the caller. A request
// without a token continues as a guest; a token that fails verification is
// rejected here.
func (m *AuthMiddleware) ResolveIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := m.resolver.Resolve(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				abortWithError(c, http.StatusUnauthorized, "token_expired", "Auth token has expired")
			case errors.Is(err, auth.ErrInvalidToken):
				abortWithError(c, http.StatusUnauthorized, "invalid_token", "Invalid auth token")
			default:
				m.log.ErrorContext(c.Request.Context(), "identity resolution failed", "err", err)
				abortWithError(c, http.StatusInternalServerError, "internal_error", "Server error")
			}
			return
		}

		c.Set(CtxIdentity, id)
		c.Request = c.Request.WithContext(actorctx.WithIdentity(c.Request.Context(), id))

		c.Next()
	}
}

// IdentityFromContext lets handlers read the identity without knowing the key.
func IdentityFromContext(c *gin.Context) identity.Identity {
	v, ok := c.Get(CtxIdentity)
	if !ok {
		return actorctx.IdentityFrom(c.Request.Context())
	}
	id, ok := v.(identity.Identity)
	if !ok {
		return identity.Guest()
	}
	return id
}
