package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User 身份提供方用户在本地的资料
type User struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Email     *string   `gorm:"size:255;uniqueIndex" json:"email,omitempty"`
	FullName  string    `gorm:"size:100" json:"full_name"`
	AvatarURL string    `gorm:"size:500" json:"avatar_url"`
	GithubID  *string   `gorm:"column:github_id;size:50;uniqueIndex" json:"-"`
	Role      string    `gorm:"size:20;default:user" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
