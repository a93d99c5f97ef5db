package dto

import "github.com/qs3c/blog_go_server/internal/model"

// CreateCommentRequest 创建评论请求
// content 的非空校验在 trim 之后由 service 完成
type CreateCommentRequest struct {
	Content  string  `json:"content"`
	PostID   string  `json:"post_id"`
	ParentID *string `json:"parent_id,omitempty"`
}

// UpdateCommentStatusRequest 审核评论请求
type UpdateCommentStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CommentItem 评论项
type CommentItem struct {
	ID          string              `json:"id"`
	Content     string              `json:"content"`
	PostID      string              `json:"post_id"`
	ParentID    *string             `json:"parent_id"`
	UserID      *string             `json:"user_id"`
	AuthorName  string              `json:"author_name"`
	AuthorEmail string              `json:"author_email,omitempty"`
	Status      model.CommentStatus `json:"status"`
	CreatedAt   string              `json:"created_at"`
	UpdatedAt   string              `json:"updated_at"`
}

// CommentThread 一级评论及其回复
type CommentThread struct {
	CommentItem
	Replies []*CommentItem `json:"replies"`
}

// CommentEvent 评论事件（pub/sub 与 websocket 推送）
type CommentEvent struct {
	Type    string       `json:"type"`
	PostID  string       `json:"post_id"`
	Comment *CommentItem `json:"comment"`
}

const (
	EventCommentCreated       = "comment_created"
	EventCommentStatusChanged = "comment_status_changed"
	EventCommentDeleted       = "comment_deleted"
)
