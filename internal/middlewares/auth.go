package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Gopher0727/GroupChat/internal/services"
)

// ContextUsername 认证通过后当前用户名在 gin.Context 中的键
const ContextUsername = "username"

// AuthMiddleware 解析 Bearer Token，把登录用户名写入 context
func AuthMiddleware(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		username, err := auth.ResolvePrincipal(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, services.ErrUnauthenticated) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			} else {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			}
			return
		}

		c.Set(ContextUsername, username)
		c.Next()
	}
}

// BearerToken 从 Authorization 头取出 token，格式不对时返回空串
func BearerToken(c *gin.Context) string {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// CurrentUser returns the username set by AuthMiddleware.
func CurrentUser(c *gin.Context) (string, bool) {
	username := c.GetString(ContextUsername)
	return username, username != ""
}
