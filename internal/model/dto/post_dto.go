package dto

// CreatePostRequest 创建文章请求
type CreatePostRequest struct {
	Title     string `json:"title" binding:"required,min=1,max=200"`
	Slug      string `json:"slug,omitempty" binding:"omitempty,max=200"`
	Content   string `json:"content"`
	Published bool   `json:"published"`
}

// PostItem 文章列表项
type PostItem struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Slug      string  `json:"slug"`
	AuthorID  *string `json:"author_id,omitempty"`
	Published bool    `json:"published"`
	CreatedAt string  `json:"created_at"`
}

// PostDetail 文章详情
type PostDetail struct {
	PostItem
	Content      string `json:"content"`
	CommentCount int64  `json:"comment_count"`
}
