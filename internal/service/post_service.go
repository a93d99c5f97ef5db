package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/qs3c/blog_go_server/internal/model"
	"github.com/qs3c/blog_go_server/internal/model/dto"
	"github.com/qs3c/blog_go_server/internal/pkg/cache"
	"github.com/qs3c/blog_go_server/internal/repository"
)

var (
	ErrPostNotFound = errors.New("文章不存在")
	ErrSlugExists   = errors.New("slug 已被使用")
	ErrInvalidSlug  = errors.New("slug 只能包含小写字母、数字和连字符")
	ErrTitleEmpty   = errors.New("标题不能为空")
)

var (
	slugInvalidChars = regexp.MustCompile(`[^a-z0-9]+`)
	slugPattern      = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

type PostService struct {
	postRepo    *repository.PostRepository
	commentRepo *repository.CommentRepository
	cache       *cache.ThreadCache
}

func NewPostService(
	postRepo *repository.PostRepository,
	commentRepo *repository.CommentRepository,
	threadCache *cache.ThreadCache,
) *PostService {
	return &PostService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		cache:       threadCache,
	}
}

// List 已发布文章列表
func (s *PostService) List(ctx context.Context, page, pageSize int) ([]*dto.PostItem, int64, error) {
	posts, total, err := s.postRepo.ListPublished(ctx, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	items := make([]*dto.PostItem, len(posts))
	for i, p := range posts {
		items[i] = buildPostItem(p)
	}
	return items, total, nil
}

// Get 按 ID 或 slug 获取文章，草稿只对管理员可见
func (s *PostService) Get(ctx context.Context, actor *model.Actor, idOrSlug string) (*dto.PostDetail, error) {
	post, err := s.postRepo.GetByID(ctx, idOrSlug)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		post, err = s.postRepo.GetBySlug(ctx, idOrSlug)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	if !post.Published && !actor.IsAdmin() {
		return nil, ErrPostNotFound
	}

	count, err := s.commentRepo.CountByPost(ctx, post.ID, model.StatusApproved)
	if err != nil {
		return nil, err
	}

	return &dto.PostDetail{
		PostItem:     *buildPostItem(post),
		Content:      post.Content,
		CommentCount: count,
	}, nil
}

// Delete 删除文章，评论随之删除
func (s *PostService) Delete(ctx context.Context, id string) error {
	affected, err := s.postRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrPostNotFound
	}

	// 缓存失效失败不影响删除结果，TTL 到期后自然清除
	_ = s.cache.Invalidate(ctx, id)
	return nil
}

// Create 创建文章
func (s *PostService) Create(ctx context.Context, actor *model.Actor, req *dto.CreatePostRequest) (*dto.PostDetail, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrTitleEmpty
	}

	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		slug = Slugify(title)
	} else if !slugPattern.MatchString(slug) {
		return nil, ErrInvalidSlug
	}

	exists, err := s.postRepo.ExistsBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrSlugExists
	}

	post := &model.Post{
		Title:     title,
		Slug:      slug,
		Content:   req.Content,
		Published: req.Published,
	}
	if actor != nil {
		post.AuthorID = &actor.UserID
	}

	// 并发创建同一 slug 时由唯一索引兜底
	if err := s.postRepo.Create(ctx, post); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, ErrSlugExists
		}
		return nil, err
	}

	return &dto.PostDetail{
		PostItem: *buildPostItem(post),
		Content:  post.Content,
	}, nil
}

// Slugify 由标题生成 slug，标题没有可用字符时生成随机 slug
func Slugify(title string) string {
	slug := slugInvalidChars.ReplaceAllString(strings.ToLower(title), "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > 80 {
		slug = strings.TrimRight(slug[:80], "-")
	}
	if slug == "" {
		slug = "post-" + uuid.NewString()[:8]
	}
	return slug
}

func buildPostItem(p *model.Post) *dto.PostItem {
	return &dto.PostItem{
		ID:        p.ID,
		Title:     p.Title,
		Slug:      p.Slug,
		AuthorID:  p.AuthorID,
		Published: p.Published,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
}
