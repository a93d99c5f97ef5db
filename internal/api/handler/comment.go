package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/blog_go_server/internal/api/middleware"
	"github.com/qs3c/blog_go_server/internal/model"
	"github.com/qs3c/blog_go_server/internal/model/dto"
	"github.com/qs3c/blog_go_server/internal/pkg/response"
	"github.com/qs3c/blog_go_server/internal/service"
)

type CommentHandler struct {
	commentService *service.CommentService
}

func NewCommentHandler(commentService *service.CommentService) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
	}
}

// List 获取文章评论树，登录的管理员可以看到草稿下的评论
// GET /api/comments?post_id=xxx
func (h *CommentHandler) List(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	threads, err := h.commentService.List(c.Request.Context(), actor, c.Query("post_id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPostIDRequired):
			response.ParamError(c, err.Error())
		default:
			_ = c.Error(err)
			response.ServerError(c, err.Error())
		}
		return
	}

	response.Success(c, threads)
}

// Create 发表评论
// POST /api/comments
func (h *CommentHandler) Create(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "请求体格式错误")
		return
	}

	comment, err := h.commentService.Create(c.Request.Context(), actor, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrContentEmpty),
			errors.Is(err, service.ErrContentTooLong),
			errors.Is(err, service.ErrPostIDRequired),
			errors.Is(err, service.ErrParentNotInPost):
			response.ParamError(c, err.Error())
		case errors.Is(err, service.ErrPostNotFound),
			errors.Is(err, service.ErrParentNotFound):
			response.NotFoundError(c, err.Error())
		default:
			// 存储层错误原样返回
			_ = c.Error(err)
			response.ServerError(c, err.Error())
		}
		return
	}

	response.Created(c, comment)
}

// UpdateStatus 审核评论
// PATCH /api/comments/:id/status
func (h *CommentHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateCommentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "缺少 status")
		return
	}

	comment, err := h.commentService.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrInvalidStatus):
			response.ParamError(c, err.Error())
		case errors.Is(err, service.ErrCommentNotFound):
			response.NotFoundError(c, err.Error())
		default:
			_ = c.Error(err)
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, comment)
}

// ListModeration 审核队列
// GET /api/admin/comments?status=pending
func (h *CommentHandler) ListModeration(c *gin.Context) {
	page, pageSize := parsePagination(c)

	items, total, err := h.commentService.ListByStatus(c.Request.Context(), c.Query("status"), page, pageSize)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrInvalidStatus):
			response.ParamError(c, err.Error())
		default:
			_ = c.Error(err)
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessPage(c, total, page, pageSize, items)
}

// Delete 删除评论
// DELETE /api/comments/:id
func (h *CommentHandler) Delete(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	if err := h.commentService.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		switch {
		case errors.Is(err, service.ErrCommentNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrCommentPermission):
			response.PermissionError(c, err.Error())
		default:
			_ = c.Error(err)
			response.ServerError(c, "")
		}
		return
	}

	response.NoContent(c)
}
