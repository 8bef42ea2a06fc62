package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	apierrors "github.com/timepass/backend/internal/errors"
	"github.com/timepass/backend/internal/models"
)

// TokenValidator resolves a bearer token to a user
type TokenValidator interface {
	ValidateToken(token string) (*models.User, error)
}

// AuthMiddleware requires a valid Bearer token and puts the resolved
// user on the request context under "user" / "user_id"
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				apierrors.Unauthorized("missing bearer token"))
			return
		}

		user, err := validator.ValidateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				apierrors.Unauthorized("invalid or expired token"))
			return
		}

		c.Set("user", user)
		c.Set("user_id", user.ID)
		c.Next()
	}
}

// CurrentUser pulls the authenticated user from the context
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get("user")
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}
