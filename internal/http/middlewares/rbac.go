package middlewares

import (
	"net/http"

	"github.com/geocoder89/commenthub/internal/policy"
	"github.com/gin-gonic/gin"
)

// RequireToken rejects guests. The status is a parameter because a few routes
// answer a missing token with 400 rather than 401.
func RequireToken(status int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if IdentityFromContext(c).IsGuest() {
			abortWithError(c, status, "missing_token", "Auth token is required")
			return
		}
		c.Next()
	}
}

// RequireAdmin answers 401 for a non-admin caller, the same as for a missing token.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := IdentityFromContext(c)
		if id.IsGuest() {
			abortWithError(c, http.StatusUnauthorized, "missing_token", "Auth token is required")
			return
		}
		if !policy.RequiresAdmin(id) {
			abortWithError(c, http.StatusUnauthorized, "forbidden", "Admin role required")
			return
		}
		c.Next()
	}
}
