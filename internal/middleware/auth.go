package middleware

import (
	"net/http"
	"strings"

	"personal-finance-backend/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const userIDKey = "userID"

// RequireAuth resolves the bearer token to a user and stores the user ID on
// the context. Requests without a valid token get 401.
func RequireAuth(users *repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		user, err := users.FindByToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(userIDKey, user.ID)
		c.Next()
	}
}

// CurrentUserID returns the authenticated user's ID set by RequireAuth.
func CurrentUserID(c *gin.Context) uuid.UUID {
	id, _ := c.Get(userIDKey)
	userID, _ := id.(uuid.UUID)
	return userID
}
