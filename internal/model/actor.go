package model

import "strings"

const anonymousName = "Anonymous"

// Actor 当前请求的登录身份，来自会话 token
type Actor struct {
	UserID    string
	Email     string
	Role      string
	FullName  string
	Name      string
	AvatarURL string
}

// DisplayName 评论展示名：full_name，其次 name，其次邮箱前缀
func (a *Actor) DisplayName() string {
	if a == nil {
		return anonymousName
	}
	if name := strings.TrimSpace(a.FullName); name != "" {
		return name
	}
	if name := strings.TrimSpace(a.Name); name != "" {
		return name
	}
	if local, _, ok := strings.Cut(a.Email, "@"); ok && local != "" {
		return local
	}
	return anonymousName
}

func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == RoleAdmin
}

// Owns 是否为该评论的作者
func (a *Actor) Owns(c *Comment) bool {
	return a != nil && c.UserID != nil && *c.UserID == a.UserID
}
