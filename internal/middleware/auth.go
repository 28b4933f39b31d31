package middleware

import (
	"strings"

	"techtrain_backend/internal/config"
	"techtrain_backend/internal/service"
	"techtrain_backend/internal/util"
	"techtrain_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}

		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, cfg.JWT.Secret)
		if err != nil {
			logger.Log.Debug("token rejected", zap.Error(err))
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set("user", claims)
		c.Next()
	}
}

// PermissionMiddleware gates a route on one permission, resolved through
// the role/override/wildcard rules of the access service.
func PermissionMiddleware(access *service.AccessService, permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := util.GetUserFromContext(c)
		if claims == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		ok, err := access.Has(claims.UserID, permission)
		if err != nil {
			util.LogInternalError(c, err)
			c.Abort()
			return
		}
		if !ok {
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
