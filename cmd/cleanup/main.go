package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/qs3c/blog_go_server/config"
	"github.com/qs3c/blog_go_server/internal/database"
	"github.com/qs3c/blog_go_server/internal/pkg/cron"
	"github.com/qs3c/blog_go_server/internal/pkg/logger"
	"github.com/qs3c/blog_go_server/internal/repository"
)

var (
	dryRun        = flag.Bool("dry-run", true, "Dry run mode, only count comments that would be purged")
	retentionDays = flag.Int("retention-days", 0, "Override comment.rejected_retention_days")
)

// 手动清理已拒绝的评论，与 server 内的定时任务使用同一套逻辑
func main() {
	flag.Parse()
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zl.Sync()

	db, err := database.New(&cfg.Database)
	if err != nil {
		zl.Fatal("failed to connect database", zap.Error(err))
	}

	days := cfg.Comment.RejectedRetentionDays
	if *retentionDays > 0 {
		days = *retentionDays
	}
	svc := cron.NewService(repository.NewCommentRepository(db), days, zl)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if *dryRun {
		count, cutoff, err := svc.Preview(ctx)
		if err != nil {
			zl.Fatal("count rejected comments failed", zap.Error(err))
		}
		zl.Info("dry run, nothing deleted",
			zap.Int64("would_purge", count),
			zap.Time("cutoff", cutoff),
		)
		return
	}

	purged, err := svc.RunNow(ctx)
	if err != nil {
		zl.Fatal("purge rejected comments failed", zap.Error(err))
	}
	zl.Info("cleanup completed", zap.Int64("purged", purged))
}
