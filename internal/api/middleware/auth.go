package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"quality-scanner/internal/pkg/auth"
	"quality-scanner/internal/pkg/config"
	"quality-scanner/internal/pkg/jwt"
	"quality-scanner/pkg/constants"
	pkgErrors "quality-scanner/pkg/errors"
	"quality-scanner/pkg/utils"
)

// AuthMiddleware JWT认证中间件, 未启用认证时直接放行
func AuthMiddleware(cfg *config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.Next()
			return
		}

		authHeader := c.GetHeader(constants.HeaderAuthorization)
		if authHeader == "" {
			utils.ErrorWithCode(c, pkgErrors.CodeUnauthorized, "缺少Authorization Header")
			c.Abort()
			return
		}

		if !strings.HasPrefix(authHeader, constants.HeaderBearerPrefix) {
			utils.ErrorWithCode(c, pkgErrors.CodeUnauthorized, "Authorization格式错误")
			c.Abort()
			return
		}

		token := strings.TrimPrefix(authHeader, constants.HeaderBearerPrefix)
		claims, err := jwt.ValidateToken(cfg.JWT, token)
		if err != nil {
			utils.Error(c, err)
			c.Abort()
			return
		}

		c.Set(constants.JWTContextKey, claims)
		c.Set(constants.ContextClient, claims.Client)

		c.Next()
	}
}

// RequirePermission 校验客户端角色权限, 未启用认证时直接放行
func RequirePermission(cfg *config.AuthConfig, need auth.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.Next()
			return
		}

		value, ok := c.Get(constants.JWTContextKey)
		claims, _ := value.(*jwt.ClientClaims)
		if !ok || claims == nil {
			utils.Error(c, pkgErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if !auth.Allow([]string{claims.Role}, need) {
			utils.ErrorWithCode(c, pkgErrors.CodeForbidden, "无权限: "+string(need))
			c.Abort()
			return
		}

		c.Next()
	}
}
