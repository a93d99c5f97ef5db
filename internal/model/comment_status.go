package model

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
)

// CommentStatus 评论审核状态，只允许 pending / approved / rejected
type CommentStatus string

const (
	StatusPending  CommentStatus = "pending"
	StatusApproved CommentStatus = "approved"
	StatusRejected CommentStatus = "rejected"
)

var ErrInvalidStatus = errors.New("无效的评论状态")

// ParseCommentStatus 解析状态字符串（忽略大小写与首尾空白）
func ParseCommentStatus(s string) (CommentStatus, error) {
	status := CommentStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return status, nil
}

func (s CommentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

func (s CommentStatus) String() string {
	return string(s)
}

// Value 写库前校验，防止非法状态落库
func (s CommentStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, string(s))
	}
	return string(s), nil
}

func (s *CommentStatus) Scan(value interface{}) error {
	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	case nil:
		*s = StatusPending
		return nil
	default:
		return fmt.Errorf("unsupported status type %T", value)
	}

	status, err := ParseCommentStatus(raw)
	if err != nil {
		return err
	}
	*s = status
	return nil
}

// UnmarshalText 供 JSON 绑定使用
func (s *CommentStatus) UnmarshalText(text []byte) error {
	status, err := ParseCommentStatus(string(text))
	if err != nil {
		return err
	}
	*s = status
	return nil
}
