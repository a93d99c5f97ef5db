package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/qs3c/blog_go_server/config"
	"github.com/qs3c/blog_go_server/internal/api"
	"github.com/qs3c/blog_go_server/internal/api/handler"
	"github.com/qs3c/blog_go_server/internal/database"
	"github.com/qs3c/blog_go_server/internal/model/dto"
	"github.com/qs3c/blog_go_server/internal/pkg/cache"
	"github.com/qs3c/blog_go_server/internal/pkg/cron"
	"github.com/qs3c/blog_go_server/internal/pkg/email"
	"github.com/qs3c/blog_go_server/internal/pkg/logger"
	"github.com/qs3c/blog_go_server/internal/pkg/oauth"
	"github.com/qs3c/blog_go_server/internal/pkg/pubsub"
	"github.com/qs3c/blog_go_server/internal/pkg/ws"
	"github.com/qs3c/blog_go_server/internal/repository"
	"github.com/qs3c/blog_go_server/internal/service"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "配置文件路径")
	flag.Parse()

	// .env 不存在时忽略
	_ = godotenv.Load()

	// 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zl.Sync()

	// 初始化数据库
	db, err := database.New(&cfg.Database)
	if err != nil {
		zl.Fatal("failed to connect database", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		zl.Fatal("failed to migrate database", zap.Error(err))
	}
	zl.Info("database connected", zap.String("driver", cfg.Database.Driver))

	// 初始化 Redis（可选）
	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = database.NewRedis(&cfg.Redis)
		if err != nil {
			zl.Fatal("failed to connect redis", zap.Error(err))
		}
		defer rdb.Close()
		zl.Info("redis connected")
	} else {
		zl.Warn("redis disabled, github login and thread cache are unavailable")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// WebSocket
	hub := ws.NewHub(zl)
	websocketHandler := handler.NewWebSocketHandler(hub, cfg.CORS.AllowedOrigins, zl)

	// 启用 redis 时经由 pub/sub 广播，多实例部署也能收到；否则进程内直推
	var publisher service.EventPublisher = websocketHandler
	if rdb != nil {
		publisher = pubsub.NewPublisher(rdb)
		subscriber := pubsub.NewSubscriber(rdb)
		go func() {
			err := subscriber.Subscribe(ctx, func(event *dto.CommentEvent) {
				websocketHandler.Forward(event)
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				zl.Error("comment event subscriber stopped", zap.Error(err))
			}
		}()
	}

	// 初始化 Repository
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	// 初始化 Service
	var notifier service.ModeratorNotifier
	if cfg.Email.Enabled {
		notifier = email.NewService(&cfg.Email)
	}
	threadCache := cache.NewThreadCache(rdb, time.Duration(cfg.Comment.CacheTTLSeconds)*time.Second)
	github := oauth.NewGithubOAuth(cfg.OAuth.Github.ClientID, cfg.OAuth.Github.ClientSecret, cfg.OAuth.Github.RedirectURI)

	authService := service.NewAuthService(userRepo, github, oauth.NewStateStore(rdb), &cfg.Auth)
	postService := service.NewPostService(postRepo, commentRepo, threadCache)
	commentService := service.NewCommentService(commentRepo, postRepo, threadCache, publisher, notifier, &cfg.Comment, zl)

	// 定时清理被拒绝的评论
	cronService := cron.NewService(commentRepo, cfg.Comment.RejectedRetentionDays, zl)
	cronService.Start()
	defer cronService.Stop()

	// 初始化 Router
	router := api.NewRouter(
		handler.NewAuthHandler(authService, cfg.Auth),
		handler.NewPostHandler(postService),
		handler.NewCommentHandler(commentService),
		websocketHandler,
		handler.NewHealthHandler(db, rdb),
		cfg,
		zl,
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zl.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("failed to start server", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	zl.Info("received shutdown signal", zap.String("signal", sig.String()))

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("server shutdown failed", zap.Error(err))
	}
	zl.Info("server stopped")
}
