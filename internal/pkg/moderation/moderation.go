package moderation

import (
	"strings"

	"github.com/qs3c/blog_go_server/internal/model"
)

// Screener 违禁词筛查，命中的评论进入待审核队列
type Screener struct {
	bannedWords []string
}

func NewScreener(bannedWords []string) *Screener {
	words := make([]string, 0, len(bannedWords))
	for _, w := range bannedWords {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			words = append(words, w)
		}
	}
	return &Screener{bannedWords: words}
}

// Banned 返回命中的违禁词
func (s *Screener) Banned(content string) (string, bool) {
	if s == nil {
		return "", false
	}

	lower := strings.ToLower(content)
	for _, w := range s.bannedWords {
		if strings.Contains(lower, w) {
			return w, true
		}
	}
	return "", false
}

// InitialStatus 新评论的初始审核状态
func (s *Screener) InitialStatus(content string, autoApprove bool) model.CommentStatus {
	if _, banned := s.Banned(content); banned {
		return model.StatusPending
	}
	if autoApprove {
		return model.StatusApproved
	}
	return model.StatusPending
}
