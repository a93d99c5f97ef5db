package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/qs3c/blog_go_server/internal/model"
)

// TestUser 创建测试用户
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	email := fmt.Sprintf("test_%s@example.com", uuid.NewString()[:8])
	user := &model.User{
		Email:    &email,
		FullName: "Test User",
		Role:     model.RoleUser,
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithFullName 设置用户全名
func WithFullName(name string) func(*model.User) {
	return func(u *model.User) {
		u.FullName = name
	}
}

// WithEmail 设置邮箱
func WithEmail(email string) func(*model.User) {
	return func(u *model.User) {
		u.Email = &email
	}
}

// WithRole 设置角色
func WithRole(role string) func(*model.User) {
	return func(u *model.User) {
		u.Role = role
	}
}

// TestPost 创建测试文章（默认已发布）
func TestPost(t *testing.T, db *gorm.DB, opts ...func(*model.Post)) *model.Post {
	t.Helper()

	suffix := uuid.NewString()[:8]
	post := &model.Post{
		Title:     "Test Post " + suffix,
		Slug:      "test-post-" + suffix,
		Content:   "Lorem ipsum",
		Published: true,
	}

	for _, opt := range opts {
		opt(post)
	}

	if err := db.Create(post).Error; err != nil {
		t.Fatalf("Failed to create test post: %v", err)
	}

	return post
}

// WithPostID 指定文章 ID
func WithPostID(id string) func(*model.Post) {
	return func(p *model.Post) {
		p.ID = id
	}
}

// WithTitle 设置文章标题
func WithTitle(title string) func(*model.Post) {
	return func(p *model.Post) {
		p.Title = title
	}
}

// WithPublished 设置发布状态
func WithPublished(published bool) func(*model.Post) {
	return func(p *model.Post) {
		p.Published = published
	}
}

// TestComment 创建测试评论（默认已审核通过）
func TestComment(t *testing.T, db *gorm.DB, postID, content string, opts ...func(*model.Comment)) *model.Comment {
	t.Helper()

	comment := &model.Comment{
		PostID:     postID,
		Content:    content,
		AuthorName: "tester",
		Status:     model.StatusApproved,
	}

	for _, opt := range opts {
		opt(comment)
	}

	if err := db.Create(comment).Error; err != nil {
		t.Fatalf("Failed to create test comment: %v", err)
	}

	return comment
}

// TestReply 创建测试回复
func TestReply(t *testing.T, db *gorm.DB, postID, parentID, content string, opts ...func(*model.Comment)) *model.Comment {
	t.Helper()

	return TestComment(t, db, postID, content, append([]func(*model.Comment){WithParent(parentID)}, opts...)...)
}

// WithParent 设置父评论
func WithParent(parentID string) func(*model.Comment) {
	return func(c *model.Comment) {
		c.ParentID = &parentID
	}
}

// WithCommentStatus 设置审核状态
func WithCommentStatus(status model.CommentStatus) func(*model.Comment) {
	return func(c *model.Comment) {
		c.Status = status
	}
}

// WithAuthor 设置评论作者
func WithAuthor(user *model.User) func(*model.Comment) {
	return func(c *model.Comment) {
		c.UserID = &user.ID
		c.AuthorName = user.FullName
		if user.Email != nil {
			c.AuthorEmail = *user.Email
		}
	}
}

// WithCreatedAt 设置创建时间（用于排序测试）
func WithCreatedAt(ts time.Time) func(*model.Comment) {
	return func(c *model.Comment) {
		c.CreatedAt = ts
	}
}
