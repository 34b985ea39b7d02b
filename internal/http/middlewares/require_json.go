package middlewares

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireJSON only checks methods that carry a body. DELETE requests here never do.
// A wrong content type is reported like any other invalid body.
func RequireJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			// "application/json; charset=utf-8" is fine
			mediaType, _, err := mime.ParseMediaType(c.GetHeader("Content-Type"))
			if err != nil || mediaType != "application/json" {
				abortWithError(c, http.StatusBadRequest, "invalid_request", "Content-Type must be application/json")
				return
			}
		}
		c.Next()
	}
}
