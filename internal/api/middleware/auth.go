package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/blog_go_server/config"
	"github.com/qs3c/blog_go_server/internal/model"
	"github.com/qs3c/blog_go_server/internal/pkg/jwt"
	"github.com/qs3c/blog_go_server/internal/pkg/response"
)

const (
	ActorKey = "actor"
)

// Auth 会话认证中间件，token 来自 cookie 或 Authorization: Bearer
func Auth(cfg config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c, cfg.CookieName)
		if tokenString == "" {
			response.AuthError(c, "请先登录")
			c.Abort()
			return
		}

		claims, err := jwt.ParseToken(tokenString, cfg.JWTSecret)
		if err != nil {
			response.AuthError(c, "认证失败或已过期")
			c.Abort()
			return
		}

		c.Set(ActorKey, actorFromClaims(claims))
		c.Next()
	}
}

// OptionalAuth 可选认证中间件（不强制要求登录）
func OptionalAuth(cfg config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString := extractToken(c, cfg.CookieName); tokenString != "" {
			if claims, err := jwt.ParseToken(tokenString, cfg.JWTSecret); err == nil {
				c.Set(ActorKey, actorFromClaims(claims))
			}
		}
		c.Next()
	}
}

// RequireAdmin 管理员权限，需放在 Auth 之后
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			response.AuthError(c, "请先登录")
			c.Abort()
			return
		}
		if !actor.IsAdmin() {
			response.PermissionError(c, "需要管理员权限")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetActor 从上下文获取当前登录身份
func GetActor(c *gin.Context) (*model.Actor, bool) {
	v, exists := c.Get(ActorKey)
	if !exists {
		return nil, false
	}
	actor, ok := v.(*model.Actor)
	return actor, ok && actor != nil
}

func extractToken(c *gin.Context, cookieName string) string {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}

	if cookieName == "" {
		return ""
	}
	if cookie, err := c.Cookie(cookieName); err == nil {
		return cookie
	}
	return ""
}

func actorFromClaims(claims *jwt.Claims) *model.Actor {
	return &model.Actor{
		UserID:    claims.UserID,
		Email:     claims.Email,
		Role:      claims.Role,
		FullName:  claims.UserMetadata.FullName,
		Name:      claims.UserMetadata.Name,
		AvatarURL: claims.UserMetadata.AvatarURL,
	}
}
