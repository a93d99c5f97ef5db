package dto

// SessionUser 当前会话用户（返回给前端）
type SessionUser struct {
	ID          string `json:"id"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	Role        string `json:"role"`
}

// LoginResult OAuth 登录结果
type LoginResult struct {
	Token       string       `json:"-"`
	RedirectURI string       `json:"redirect_uri"`
	User        *SessionUser `json:"user"`
}
