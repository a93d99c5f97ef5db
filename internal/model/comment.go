package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Comment struct {
	ID          string        `gorm:"primaryKey;size:36" json:"id"`
	Content     string        `gorm:"type:text;not null" json:"content"`
	PostID      string        `gorm:"size:36;not null;index" json:"post_id"`
	UserID      *string       `gorm:"size:36;index" json:"user_id,omitempty"`
	AuthorName  string        `gorm:"size:100" json:"author_name"`
	AuthorEmail string        `gorm:"size:255" json:"author_email,omitempty"`
	ParentID    *string       `gorm:"size:36;index" json:"parent_id"`
	Status      CommentStatus `gorm:"size:20;not null;default:pending;index" json:"status"`
	CreatedAt   time.Time     `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`

	// 关联
	Post    *Post      `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	Parent  *Comment   `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE" json:"-"`
	User    *User      `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"-"`
	Replies []*Comment `gorm:"-" json:"replies,omitempty"`
}

func (Comment) TableName() string {
	return "comments"
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = StatusPending
	}
	return nil
}

func (c *Comment) IsReply() bool {
	return c.ParentID != nil
}
