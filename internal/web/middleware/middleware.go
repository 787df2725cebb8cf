package middleware

import (
	"net/http"
	"strings"

	"watthome/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Manager struct {
	auth   *auth.Module
	logger *zap.Logger
}

func NewManager(authModule *auth.Module, logger *zap.Logger) *Manager {
	return &Manager{auth: authModule, logger: logger}
}

// RequireAuth validates the bearer token (JWT first, then session token) and
// stores the user id on the request context.
func (m *Manager) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		userID, err := m.auth.ValidateTokenJWT(c, token)
		if err != nil {
			userID, err = m.auth.ValidateTokenSession(c, token)
		}
		if err != nil {
			m.logger.Debug("authentication failed", zap.Error(err))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}
