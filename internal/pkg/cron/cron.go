package cron

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/qs3c/blog_go_server/internal/repository"
)

const purgeInterval = time.Hour

type Service struct {
	commentRepo   *repository.CommentRepository
	retentionDays int
	interval      time.Duration
	logger        *zap.Logger
	stopChan      chan struct{}
	stopOnce      sync.Once
	now           func() time.Time
}

func NewService(commentRepo *repository.CommentRepository, retentionDays int, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		commentRepo:   commentRepo,
		retentionDays: retentionDays,
		interval:      purgeInterval,
		logger:        logger,
		stopChan:      make(chan struct{}),
		now:           time.Now,
	}
}

// Start 启动定时任务
func (s *Service) Start() {
	go s.runPurge()
	s.logger.Info("cron service started",
		zap.Duration("interval", s.interval),
		zap.Int("rejected_retention_days", s.retentionDays),
	)
}

// Stop 停止定时任务，可重复调用
func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
		s.logger.Info("cron service stopped")
	})
}

// runPurge 每小时清理一次过期的已拒绝评论
func (s *Service) runPurge() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			if _, err := s.RunNow(context.Background()); err != nil {
				s.logger.Error("purge rejected comments failed", zap.Error(err))
			}
		}
	}
}

// RunNow 立即清理（用于测试或手动触发）
func (s *Service) RunNow(ctx context.Context) (int64, error) {
	cutoff := s.cutoff()

	purged, err := s.commentRepo.DeleteRejectedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if purged > 0 {
		s.logger.Info("purged rejected comments", zap.Int64("count", purged), zap.Time("cutoff", cutoff))
	}
	return purged, nil
}

// Preview 统计下一次清理会删除的评论数，不做删除
func (s *Service) Preview(ctx context.Context) (int64, time.Time, error) {
	cutoff := s.cutoff()
	count, err := s.commentRepo.CountRejectedBefore(ctx, cutoff)
	return count, cutoff, err
}

func (s *Service) cutoff() time.Time {
	days := s.retentionDays
	if days <= 0 {
		days = 30
	}
	return s.now().Add(-time.Duration(days) * 24 * time.Hour)
}
