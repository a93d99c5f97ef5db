package email

import (
	"fmt"
	"html"
	"mime"
	"net/smtp"
	"strings"

	"github.com/qs3c/blog_go_server/config"
)

// PendingComment 待审核评论通知内容
type PendingComment struct {
	PostTitle  string
	AuthorName string
	Content    string
	Reason     string
	ReviewURL  string
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type Service struct {
	cfg  *config.EmailConfig
	send sendFunc
}

func NewService(cfg *config.EmailConfig) *Service {
	return &Service{cfg: cfg, send: smtp.SendMail}
}

// Enabled 是否配置了 SMTP
func (s *Service) Enabled() bool {
	return s != nil && s.cfg != nil && s.cfg.Enabled && s.cfg.SMTPHost != ""
}

// SendPendingComment 通知审核人有新的待审核评论
func (s *Service) SendPendingComment(to string, c PendingComment) error {
	if !s.Enabled() || to == "" {
		return nil
	}

	subject := fmt.Sprintf("待审核评论 - %s", c.PostTitle)

	reason := ""
	if c.Reason != "" {
		reason = fmt.Sprintf(`<p style="color: #b45309;">%s</p>`, html.EscapeString(c.Reason))
	}
	review := ""
	if c.ReviewURL != "" {
		review = fmt.Sprintf(`<p><a href="%s">前往审核</a></p>`, html.EscapeString(c.ReviewURL))
	}

	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #2563eb;">新评论待审核</h2>
        <p>文章《%s》收到来自 <strong>%s</strong> 的评论：</p>
        <blockquote style="background-color: #f3f4f6; padding: 15px; margin: 20px 0;">%s</blockquote>
        %s
        %s
        <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
        <p style="color: #6b7280; font-size: 12px;">此邮件由系统自动发送，请勿回复。</p>
    </div>
</body>
</html>
`, html.EscapeString(c.PostTitle), html.EscapeString(c.AuthorName), html.EscapeString(c.Content), reason, review)

	return s.sendHTML(to, subject, body)
}

// headerReplacer 去掉头部值中的换行，防止注入额外的邮件头
var headerReplacer = strings.NewReplacer("\r", "", "\n", " ")

// sendHTML 发送 HTML 邮件
func (s *Service) sendHTML(to, subject, body string) error {
	to = strings.TrimSpace(headerReplacer.Replace(to))
	from := strings.TrimSpace(headerReplacer.Replace(s.cfg.From))

	headers := [][2]string{
		{"From", from},
		{"To", to},
		{"Subject", mime.QEncoding.Encode("UTF-8", headerReplacer.Replace(subject))},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
	}

	var msg strings.Builder
	for _, h := range headers {
		msg.WriteString(fmt.Sprintf("%s: %s\r\n", h[0], h[1]))
	}
	msg.WriteString("\r\n")
	msg.WriteString(body)

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPHost)
	}
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	return s.send(addr, auth, from, []string{to}, []byte(msg.String()))
}
