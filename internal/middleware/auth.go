package middleware

import (
	"net/http"
	"strings"

	"pest_crm/internal/services"

	"github.com/gin-gonic/gin"
)

// Auth guards the API with the bearer token issued at login. Responses use
// the same envelope as the handlers so clients treat a 401 uniformly.
func Auth(authService services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "authorization required",
			})
			return
		}

		userID, err := authService.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "invalid or expired token",
			})
			return
		}

		c.Set("userId", userID)
		c.Next()
	}
}
