package middleware

import (
	"strings"

	"rag-compliance-assistant/internal/config"
	"rag-compliance-assistant/utils"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware checks requests against the single static bearer secret the
// service is configured with. Missing or malformed header gets 401, a
// mismatched token gets 403.
type AuthMiddleware struct {
	authKey string
}

func NewAuthMiddleware(cfg *config.Config) *AuthMiddleware {
	return &AuthMiddleware{authKey: cfg.AuthKey}
}

func (a *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			utils.RespondWithUnauthorized(c, "Invalid token")
			c.Abort()
			return
		}
		if strings.TrimPrefix(header, "Bearer ") != a.authKey {
			utils.RespondWithForbidden(c, "Unauthorized")
			c.Abort()
			return
		}
		c.Next()
	}
}
