package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qs3c/blog_go_server/config"
	"github.com/qs3c/blog_go_server/internal/api/handler"
	"github.com/qs3c/blog_go_server/internal/api/middleware"
)

type Router struct {
	authHandler      *handler.AuthHandler
	postHandler      *handler.PostHandler
	commentHandler   *handler.CommentHandler
	websocketHandler *handler.WebSocketHandler
	healthHandler    *handler.HealthHandler
	cfg              *config.Config
	logger           *zap.Logger
}

func NewRouter(
	authHandler *handler.AuthHandler,
	postHandler *handler.PostHandler,
	commentHandler *handler.CommentHandler,
	websocketHandler *handler.WebSocketHandler,
	healthHandler *handler.HealthHandler,
	cfg *config.Config,
	logger *zap.Logger,
) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		authHandler:      authHandler,
		postHandler:      postHandler,
		commentHandler:   commentHandler,
		websocketHandler: websocketHandler,
		healthHandler:    healthHandler,
		cfg:              cfg,
		logger:           logger,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.WideEventLog(r.logger))
	engine.Use(middleware.CORS(r.cfg.CORS))

	engine.GET("/healthz", r.healthHandler.Check)

	authCfg := r.cfg.Auth
	api := engine.Group("/api")
	{
		// 认证
		auth := api.Group("/auth")
		{
			auth.GET("/github", r.authHandler.GithubAuth)
			auth.GET("/github/callback", r.authHandler.GithubCallback)
			auth.POST("/logout", r.authHandler.Logout)
			auth.GET("/me", middleware.Auth(authCfg), r.authHandler.Me)
		}

		// 文章
		posts := api.Group("/posts")
		{
			posts.GET("", r.postHandler.List)
			posts.GET("/:id", middleware.OptionalAuth(authCfg), r.postHandler.Get)
			posts.POST("", middleware.Auth(authCfg), middleware.RequireAdmin(), r.postHandler.Create)
			posts.DELETE("/:id", middleware.Auth(authCfg), middleware.RequireAdmin(), r.postHandler.Delete)
		}

		// 评论 - 公开读取
		comments := api.Group("/comments")
		{
			comments.GET("", middleware.OptionalAuth(authCfg), r.commentHandler.List)
			comments.GET("/ws", r.websocketHandler.Handle)
		}

		// 评论 - 需要登录
		commentsAuth := api.Group("/comments")
		commentsAuth.Use(middleware.Auth(authCfg))
		{
			commentsAuth.POST("", r.commentHandler.Create)
			commentsAuth.DELETE("/:id", r.commentHandler.Delete)
			commentsAuth.PATCH("/:id/status", middleware.RequireAdmin(), r.commentHandler.UpdateStatus)
		}

		// 管理后台
		admin := api.Group("/admin")
		admin.Use(middleware.Auth(authCfg), middleware.RequireAdmin())
		{
			admin.GET("/comments", r.commentHandler.ListModeration)
		}
	}

	return engine
}
