package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/blog_go_server/internal/model"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create 创建评论
func (r *CommentRepository) Create(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// GetByID 根据 ID 获取评论
func (r *CommentRepository) GetByID(ctx context.Context, id string) (*model.Comment, error) {
	var comment model.Comment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&comment).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListTopLevelByPost 获取文章的一级评论，最新的在前
func (r *CommentRepository) ListTopLevelByPost(ctx context.Context, postID string, status model.CommentStatus) ([]*model.Comment, error) {
	var comments []*model.Comment
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND parent_id IS NULL AND status = ?", postID, status).
		Order("created_at DESC").
		Find(&comments).Error
	return comments, err
}

// ListRepliesByParentIDs 批量获取回复，最早的在前
func (r *CommentRepository) ListRepliesByParentIDs(ctx context.Context, parentIDs []string, status model.CommentStatus) ([]*model.Comment, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}

	var replies []*model.Comment
	err := r.db.WithContext(ctx).
		Where("parent_id IN ? AND status = ?", parentIDs, status).
		Order("created_at ASC").
		Find(&replies).Error
	return replies, err
}

// ListByStatus 按审核状态分页获取评论（审核队列）
func (r *CommentRepository) ListByStatus(ctx context.Context, status model.CommentStatus, page, pageSize int) ([]*model.Comment, int64, error) {
	var comments []*model.Comment
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Comment{}).Where("status = ?", status)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&comments).Error
	if err != nil {
		return nil, 0, err
	}

	return comments, total, nil
}

// UpdateStatus 更新审核状态，返回受影响行数
func (r *CommentRepository) UpdateStatus(ctx context.Context, id string, status model.CommentStatus) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.Comment{}).
		Where("id = ?", id).
		Update("status", status)
	return result.RowsAffected, result.Error
}

// Delete 删除评论及其回复
func (r *CommentRepository) Delete(ctx context.Context, id string) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		replies := tx.Where("parent_id = ?", id).Delete(&model.Comment{})
		if replies.Error != nil {
			return replies.Error
		}
		result := tx.Where("id = ?", id).Delete(&model.Comment{})
		if result.Error != nil {
			return result.Error
		}
		deleted = replies.RowsAffected + result.RowsAffected
		return nil
	})
	return deleted, err
}

// DeleteRejectedBefore 清理早于指定时间的已拒绝评论
func (r *CommentRepository) DeleteRejectedBefore(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", model.StatusRejected, before).
		Delete(&model.Comment{})
	return result.RowsAffected, result.Error
}

// CountRejectedBefore 统计早于指定时间的已拒绝评论
func (r *CommentRepository) CountRejectedBefore(ctx context.Context, before time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Comment{}).
		Where("status = ? AND updated_at < ?", model.StatusRejected, before).
		Count(&count).Error
	return count, err
}

// CountByPost 获取文章的评论数
func (r *CommentRepository) CountByPost(ctx context.Context, postID string, status model.CommentStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Comment{}).
		Where("post_id = ? AND status = ?", postID, status).
		Count(&count).Error
	return count, err
}
