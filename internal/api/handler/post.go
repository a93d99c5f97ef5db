package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/blog_go_server/internal/api/middleware"
	"github.com/qs3c/blog_go_server/internal/model/dto"
	"github.com/qs3c/blog_go_server/internal/pkg/response"
	"github.com/qs3c/blog_go_server/internal/service"
)

type PostHandler struct {
	postService *service.PostService
}

func NewPostHandler(postService *service.PostService) *PostHandler {
	return &PostHandler{
		postService: postService,
	}
}

// List 文章列表
// GET /api/posts
func (h *PostHandler) List(c *gin.Context) {
	page, pageSize := parsePagination(c)

	items, total, err := h.postService.List(c.Request.Context(), page, pageSize)
	if err != nil {
		_ = c.Error(err)
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, page, pageSize, items)
}

// Get 文章详情（ID 或 slug）
// GET /api/posts/:id
func (h *PostHandler) Get(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	post, err := h.postService.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPostNotFound):
			response.NotFoundError(c, err.Error())
		default:
			_ = c.Error(err)
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, post)
}

// Create 发布文章
// POST /api/posts
func (h *PostHandler) Create(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	var req dto.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	post, err := h.postService.Create(c.Request.Context(), actor, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSlugExists),
			errors.Is(err, service.ErrInvalidSlug),
			errors.Is(err, service.ErrTitleEmpty):
			response.ParamError(c, err.Error())
		default:
			_ = c.Error(err)
			response.ServerError(c, "")
		}
		return
	}

	response.Created(c, post)
}

// Delete 删除文章
// DELETE /api/posts/:id
func (h *PostHandler) Delete(c *gin.Context) {
	if err := h.postService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		switch {
		case errors.Is(err, service.ErrPostNotFound):
			response.NotFoundError(c, err.Error())
		default:
			_ = c.Error(err)
			response.ServerError(c, "")
		}
		return
	}

	response.NoContent(c)
}
