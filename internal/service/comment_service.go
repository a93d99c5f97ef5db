package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/qs3c/blog_go_server/config"
	"github.com/qs3c/blog_go_server/internal/model"
	"github.com/qs3c/blog_go_server/internal/model/dto"
	"github.com/qs3c/blog_go_server/internal/pkg/cache"
	"github.com/qs3c/blog_go_server/internal/pkg/email"
	"github.com/qs3c/blog_go_server/internal/pkg/moderation"
	"github.com/qs3c/blog_go_server/internal/repository"
)

var (
	ErrCommentNotFound   = errors.New("评论不存在")
	ErrCommentPermission = errors.New("无权操作此评论")
	ErrParentNotFound    = errors.New("父评论不存在")
	ErrParentNotInPost   = errors.New("父评论不属于该文章")
	ErrContentEmpty      = errors.New("评论内容不能为空")
	ErrContentTooLong    = errors.New("评论内容过长")
	ErrPostIDRequired    = errors.New("缺少 post_id")
)

// EventPublisher 评论事件的发布方（redis pub/sub 或进程内直连 websocket）
type EventPublisher interface {
	PublishCommentEvent(ctx context.Context, event *dto.CommentEvent) error
}

// ModeratorNotifier 待审核评论通知
type ModeratorNotifier interface {
	SendPendingComment(to string, c email.PendingComment) error
}

type CommentService struct {
	commentRepo *repository.CommentRepository
	postRepo    *repository.PostRepository
	screener    *moderation.Screener
	cache       *cache.ThreadCache
	publisher   EventPublisher
	notifier    ModeratorNotifier
	cfg         *config.CommentConfig
	logger      *zap.Logger
}

func NewCommentService(
	commentRepo *repository.CommentRepository,
	postRepo *repository.PostRepository,
	threadCache *cache.ThreadCache,
	publisher EventPublisher,
	notifier ModeratorNotifier,
	cfg *config.CommentConfig,
	logger *zap.Logger,
) *CommentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		screener:    moderation.NewScreener(cfg.BannedWords),
		cache:       threadCache,
		publisher:   publisher,
		notifier:    notifier,
		cfg:         cfg,
		logger:      logger,
	}
}

// Create 创建评论
func (s *CommentService) Create(ctx context.Context, actor *model.Actor, req *dto.CreateCommentRequest) (*dto.CommentItem, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, ErrContentEmpty
	}
	if s.cfg.MaxLength > 0 && utf8.RuneCountInString(content) > s.cfg.MaxLength {
		return nil, ErrContentTooLong
	}

	postID := strings.TrimSpace(req.PostID)
	if postID == "" {
		return nil, ErrPostIDRequired
	}

	// 验证文章存在
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	// 草稿对非管理员等同于不存在
	if !post.Published && !actor.IsAdmin() {
		return nil, ErrPostNotFound
	}

	// 如果是回复，验证父评论
	var parentID *string
	if req.ParentID != nil && strings.TrimSpace(*req.ParentID) != "" {
		parent, err := s.resolveParent(ctx, postID, strings.TrimSpace(*req.ParentID))
		if err != nil {
			return nil, err
		}
		parentID = &parent.ID
	}

	comment := &model.Comment{
		Content:     content,
		PostID:      postID,
		ParentID:    parentID,
		UserID:      &actor.UserID,
		AuthorName:  actor.DisplayName(),
		AuthorEmail: actor.Email,
		Status:      s.screener.InitialStatus(content, s.cfg.AutoApprove),
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	item := buildCommentItem(comment)
	s.afterChange(ctx, dto.EventCommentCreated, item)

	if comment.Status == model.StatusPending {
		s.notifyModerator(post, comment)
	}

	return item, nil
}

// resolveParent 找到回复应挂载的顶层评论
// 只支持一级回复，回复的回复挂到顶层评论下；父评论或其顶层评论未通过审核时视为不存在
func (s *CommentService) resolveParent(ctx context.Context, postID, id string) (*model.Comment, error) {
	parent, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrParentNotFound
		}
		return nil, err
	}

	if parent.PostID != postID {
		return nil, ErrParentNotInPost
	}
	if parent.Status != model.StatusApproved {
		return nil, ErrParentNotFound
	}
	if !parent.IsReply() {
		return parent, nil
	}

	top, err := s.commentRepo.GetByID(ctx, *parent.ParentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrParentNotFound
		}
		return nil, err
	}
	if top.Status != model.StatusApproved {
		return nil, ErrParentNotFound
	}
	return top, nil
}

// List 获取文章的评论树（仅已审核通过），草稿文章只对管理员可见
func (s *CommentService) List(ctx context.Context, actor *model.Actor, postID string) ([]*dto.CommentThread, error) {
	postID = strings.TrimSpace(postID)
	if postID == "" {
		return nil, ErrPostIDRequired
	}

	// 未知文章和不可见的草稿返回同样的空列表
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []*dto.CommentThread{}, nil
		}
		return nil, err
	}
	if !post.Published && !actor.IsAdmin() {
		return []*dto.CommentThread{}, nil
	}

	var cached []*dto.CommentThread
	gen, hit, cacheErr := s.cache.Get(ctx, postID, &cached)
	if cacheErr != nil {
		s.logger.Warn("thread cache read failed", zap.String("post_id", postID), zap.Error(cacheErr))
	}
	if hit {
		return cached, nil
	}

	// 获取一级评论
	comments, err := s.commentRepo.ListTopLevelByPost(ctx, postID, model.StatusApproved)
	if err != nil {
		return nil, err
	}

	threads := make([]*dto.CommentThread, 0, len(comments))
	if len(comments) > 0 {
		parentIDs := make([]string, len(comments))
		for i, c := range comments {
			parentIDs[i] = c.ID
		}

		// 批量获取回复
		replies, err := s.commentRepo.ListRepliesByParentIDs(ctx, parentIDs, model.StatusApproved)
		if err != nil {
			return nil, err
		}

		// 构建回复映射
		repliesMap := make(map[string][]*model.Comment)
		for _, r := range replies {
			if r.ParentID != nil {
				repliesMap[*r.ParentID] = append(repliesMap[*r.ParentID], r)
			}
		}

		for _, c := range comments {
			thread := &dto.CommentThread{
				CommentItem: *buildCommentItem(c),
				Replies:     make([]*dto.CommentItem, 0, len(repliesMap[c.ID])),
			}
			for _, r := range repliesMap[c.ID] {
				thread.Replies = append(thread.Replies, buildCommentItem(r))
			}
			threads = append(threads, thread)
		}
	}

	// 读代数失败时不回填，避免写到错误的代
	if cacheErr == nil {
		if err := s.cache.Set(ctx, postID, gen, threads); err != nil {
			s.logger.Warn("thread cache write failed", zap.String("post_id", postID), zap.Error(err))
		}
	}

	return threads, nil
}

// UpdateStatus 审核评论
func (s *CommentService) UpdateStatus(ctx context.Context, commentID, status string) (*dto.CommentItem, error) {
	newStatus, err := model.ParseCommentStatus(status)
	if err != nil {
		return nil, err
	}

	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}

	if comment.Status == newStatus {
		return buildCommentItem(comment), nil
	}

	affected, err := s.commentRepo.UpdateStatus(ctx, commentID, newStatus)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrCommentNotFound
	}

	comment.Status = newStatus
	comment.UpdatedAt = time.Now()

	item := buildCommentItem(comment)
	s.afterChange(ctx, dto.EventCommentStatusChanged, item)

	return item, nil
}

// ListByStatus 审核队列
func (s *CommentService) ListByStatus(ctx context.Context, status string, page, pageSize int) ([]*dto.CommentItem, int64, error) {
	filter := model.StatusPending
	if strings.TrimSpace(status) != "" {
		parsed, err := model.ParseCommentStatus(status)
		if err != nil {
			return nil, 0, err
		}
		filter = parsed
	}

	comments, total, err := s.commentRepo.ListByStatus(ctx, filter, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	items := make([]*dto.CommentItem, len(comments))
	for i, c := range comments {
		items[i] = buildCommentItem(c)
	}

	return items, total, nil
}

// Delete 删除评论（作者本人或管理员）
func (s *CommentService) Delete(ctx context.Context, actor *model.Actor, commentID string) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return err
	}

	// 验证权限
	if !actor.IsAdmin() && !actor.Owns(comment) {
		return ErrCommentPermission
	}

	if _, err := s.commentRepo.Delete(ctx, commentID); err != nil {
		return err
	}

	s.afterChange(ctx, dto.EventCommentDeleted, buildCommentItem(comment))
	return nil
}

// afterChange 清理缓存并发布事件，失败只记录日志
func (s *CommentService) afterChange(ctx context.Context, eventType string, item *dto.CommentItem) {
	if err := s.cache.Invalidate(ctx, item.PostID); err != nil {
		s.logger.Warn("thread cache invalidate failed", zap.String("post_id", item.PostID), zap.Error(err))
	}

	if s.publisher == nil {
		return
	}
	event := &dto.CommentEvent{
		Type:    eventType,
		PostID:  item.PostID,
		Comment: item,
	}
	if err := s.publisher.PublishCommentEvent(ctx, event); err != nil {
		s.logger.Warn("publish comment event failed",
			zap.String("type", eventType),
			zap.String("comment_id", item.ID),
			zap.Error(err),
		)
	}
}

func (s *CommentService) notifyModerator(post *model.Post, comment *model.Comment) {
	if s.notifier == nil || s.cfg.ModeratorEmail == "" {
		return
	}

	notice := email.PendingComment{
		PostTitle:  post.Title,
		AuthorName: comment.AuthorName,
		Content:    comment.Content,
		ReviewURL:  s.cfg.ReviewURL,
	}
	if word, banned := s.screener.Banned(comment.Content); banned {
		notice.Reason = "包含违禁词: " + word
	}

	go func() {
		if err := s.notifier.SendPendingComment(s.cfg.ModeratorEmail, notice); err != nil {
			s.logger.Warn("moderator notification failed", zap.String("comment_id", comment.ID), zap.Error(err))
		}
	}()
}

func buildCommentItem(c *model.Comment) *dto.CommentItem {
	return &dto.CommentItem{
		ID:          c.ID,
		Content:     c.Content,
		PostID:      c.PostID,
		ParentID:    c.ParentID,
		UserID:      c.UserID,
		AuthorName:  c.AuthorName,
		AuthorEmail: c.AuthorEmail,
		Status:      c.Status,
		CreatedAt:   c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   c.UpdatedAt.Format(time.RFC3339),
	}
}
