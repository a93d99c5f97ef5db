package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"github.com/qs3c/blog_go_server/config"
	"github.com/qs3c/blog_go_server/internal/model"
	"github.com/qs3c/blog_go_server/internal/model/dto"
	"github.com/qs3c/blog_go_server/internal/pkg/jwt"
	"github.com/qs3c/blog_go_server/internal/pkg/oauth"
	"github.com/qs3c/blog_go_server/internal/repository"
)

var (
	ErrUserNotFound     = errors.New("用户不存在")
	ErrOAuthCodeMissing = errors.New("缺少授权码")
	ErrOAuthState       = errors.New("登录状态无效或已过期")
)

// GithubProvider GitHub OAuth 客户端
type GithubProvider interface {
	GetAuthURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	GetUser(ctx context.Context, token *oauth2.Token) (*oauth.GithubUser, error)
}

// OAuthStateStore OAuth state 存储
type OAuthStateStore interface {
	GenerateState(ctx context.Context, redirectURI string) (string, error)
	ValidateState(ctx context.Context, state string) (string, error)
}

type AuthService struct {
	userRepo *repository.UserRepository
	github   GithubProvider
	states   OAuthStateStore
	cfg      *config.AuthConfig
}

func NewAuthService(
	userRepo *repository.UserRepository,
	github GithubProvider,
	states OAuthStateStore,
	cfg *config.AuthConfig,
) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		github:   github,
		states:   states,
		cfg:      cfg,
	}
}

// GithubAuthURL 生成 state 并返回 GitHub 授权地址
func (s *AuthService) GithubAuthURL(ctx context.Context, redirectURI string) (string, error) {
	state, err := s.states.GenerateState(ctx, s.safeRedirect(redirectURI))
	if err != nil {
		return "", err
	}
	return s.github.GetAuthURL(state), nil
}

// GithubCallback 处理 GitHub OAuth 回调
func (s *AuthService) GithubCallback(ctx context.Context, code, state string) (*dto.LoginResult, error) {
	redirectURI, err := s.states.ValidateState(ctx, state)
	if err != nil {
		if errors.Is(err, oauth.ErrInvalidState) {
			return nil, ErrOAuthState
		}
		return nil, err
	}

	if code == "" {
		return nil, ErrOAuthCodeMissing
	}

	// 用 code 换取 token
	token, err := s.github.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	// 获取 GitHub 用户信息
	githubUser, err := s.github.GetUser(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to get github user: %w", err)
	}

	user, err := s.upsertGithubUser(ctx, githubUser)
	if err != nil {
		return nil, err
	}

	sessionToken, err := s.IssueToken(user, githubUser.Login)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResult{
		Token:       sessionToken,
		RedirectURI: redirectURI,
		User:        BuildSessionUser(actorFromUser(user, githubUser.Login)),
	}, nil
}

// upsertGithubUser 按 github_id 查找，其次按邮箱关联，都没有则创建
func (s *AuthService) upsertGithubUser(ctx context.Context, gh *oauth.GithubUser) (*model.User, error) {
	githubID := gh.IDString()

	user, err := s.userRepo.GetByGithubID(ctx, githubID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if user == nil && gh.Email != "" {
		user, err = s.userRepo.GetByEmail(ctx, gh.Email)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	if user == nil {
		user = &model.User{
			GithubID:  &githubID,
			FullName:  gh.Name,
			AvatarURL: gh.AvatarURL,
			Role:      model.RoleUser,
		}
		if gh.Email != "" {
			user.Email = &gh.Email
		}
		if s.isAdminEmail(gh.Email) {
			user.Role = model.RoleAdmin
		}

		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		return user, nil
	}

	// 每次登录同步资料
	user.GithubID = &githubID
	if gh.Name != "" {
		user.FullName = gh.Name
	}
	if gh.AvatarURL != "" {
		user.AvatarURL = gh.AvatarURL
	}
	if user.Email == nil && gh.Email != "" {
		user.Email = &gh.Email
	}
	// 角色以管理员邮箱配置为准，移出配置的账号下次登录即降级
	user.Role = model.RoleUser
	if user.Email != nil && s.isAdminEmail(*user.Email) {
		user.Role = model.RoleAdmin
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// IssueToken 签发会话 token
func (s *AuthService) IssueToken(user *model.User, login string) (string, error) {
	actor := actorFromUser(user, login)
	return jwt.GenerateToken(jwt.Claims{
		UserID: actor.UserID,
		Email:  actor.Email,
		Role:   actor.Role,
		UserMetadata: jwt.UserMetadata{
			FullName:  actor.FullName,
			Name:      actor.Name,
			AvatarURL: actor.AvatarURL,
		},
	}, s.cfg.JWTSecret, s.cfg.ExpireHours)
}

// CurrentUser 当前会话对应的用户资料
func (s *AuthService) CurrentUser(ctx context.Context, actor *model.Actor) (*dto.SessionUser, error) {
	user, err := s.userRepo.GetByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	fresh := actorFromUser(user, actor.Name)
	return BuildSessionUser(fresh), nil
}

func (s *AuthService) isAdminEmail(email string) bool {
	if email == "" {
		return false
	}
	for _, admin := range s.cfg.AdminEmails {
		if strings.EqualFold(strings.TrimSpace(admin), email) {
			return true
		}
	}
	return false
}

// safeRedirect 只允许站内相对路径，防止开放重定向
func (s *AuthService) safeRedirect(redirectURI string) string {
	if strings.HasPrefix(redirectURI, "/") && !strings.HasPrefix(redirectURI, "//") && !strings.Contains(redirectURI, `\`) {
		return redirectURI
	}
	if s.cfg.RedirectURI != "" {
		return s.cfg.RedirectURI
	}
	return "/"
}

func actorFromUser(user *model.User, login string) *model.Actor {
	actor := &model.Actor{
		UserID:    user.ID,
		Role:      user.Role,
		FullName:  user.FullName,
		Name:      login,
		AvatarURL: user.AvatarURL,
	}
	if user.Email != nil {
		actor.Email = *user.Email
	}
	return actor
}

// BuildSessionUser 会话身份转为返回给前端的用户信息
func BuildSessionUser(actor *model.Actor) *dto.SessionUser {
	return &dto.SessionUser{
		ID:          actor.UserID,
		Email:       actor.Email,
		DisplayName: actor.DisplayName(),
		AvatarURL:   actor.AvatarURL,
		Role:        actor.Role,
	}
}
