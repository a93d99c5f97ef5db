package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/blog_go_server/config"
	"github.com/qs3c/blog_go_server/internal/api/middleware"
	"github.com/qs3c/blog_go_server/internal/pkg/oauth"
	"github.com/qs3c/blog_go_server/internal/pkg/response"
	"github.com/qs3c/blog_go_server/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
	cfg         config.AuthConfig
}

func NewAuthHandler(authService *service.AuthService, cfg config.AuthConfig) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cfg:         cfg,
	}
}

// GithubAuth 跳转 GitHub 授权
// GET /api/auth/github?redirect=/posts/xxx
func (h *AuthHandler) GithubAuth(c *gin.Context) {
	url, err := h.authService.GithubAuthURL(c.Request.Context(), c.Query("redirect"))
	if err != nil {
		switch {
		case errors.Is(err, oauth.ErrStateStoreDisabled):
			response.ServerError(c, "登录暂不可用")
		default:
			_ = c.Error(err)
			response.ServerError(c, "")
		}
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, url)
}

// GithubCallback GitHub OAuth 回调
// GET /api/auth/github/callback?code=xxx&state=xxx
func (h *AuthHandler) GithubCallback(c *gin.Context) {
	result, err := h.authService.GithubCallback(c.Request.Context(), c.Query("code"), c.Query("state"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOAuthState),
			errors.Is(err, service.ErrOAuthCodeMissing):
			response.ParamError(c, err.Error())
		case errors.Is(err, oauth.ErrStateStoreDisabled):
			response.ServerError(c, "登录暂不可用")
		default:
			_ = c.Error(err)
			response.AuthError(c, "GitHub 登录失败")
		}
		return
	}

	h.setSessionCookie(c, result.Token, h.cfg.ExpireHours*3600)
	c.Redirect(http.StatusFound, result.RedirectURI)
}

// Logout 退出登录
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.setSessionCookie(c, "", -1)
	response.NoContent(c)
}

// Me 当前登录用户
// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	user, err := h.authService.CurrentUser(c.Request.Context(), actor)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			response.AuthError(c, err.Error())
		default:
			_ = c.Error(err)
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, user)
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.CookieName, token, maxAge, "/", h.cfg.CookieDomain, h.cfg.CookieSecure, true)
}
