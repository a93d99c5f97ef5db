package handler

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/qs3c/blog_go_server/internal/model"
	"github.com/qs3c/blog_go_server/internal/model/dto"
	"github.com/qs3c/blog_go_server/internal/pkg/response"
	"github.com/qs3c/blog_go_server/internal/pkg/ws"
)

type WebSocketHandler struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

func NewWebSocketHandler(hub *ws.Hub, allowedOrigins []string, logger *zap.Logger) *WebSocketHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebSocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin:     originChecker(allowedOrigins),
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger,
	}
}

// Handle 实时评论推送
// GET /api/comments/ws?post_id=xxx
func (h *WebSocketHandler) Handle(c *gin.Context) {
	postID := strings.TrimSpace(c.Query("post_id"))
	if postID == "" {
		response.ParamError(c, "缺少 post_id")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &ws.Client{
		PostID: postID,
		Conn:   conn,
	}
	h.hub.Register(client)

	// 只读不处理，用于心跳与检测断开
	go h.hub.ReadPump(client)
}

// Forward 把评论事件推给正在查看该文章的连接，只推送已审核通过的评论
func (h *WebSocketHandler) Forward(event *dto.CommentEvent) {
	if event == nil || event.Comment == nil || event.Comment.Status != model.StatusApproved {
		return
	}

	msg := &ws.Message{Type: event.Type, Data: event.Comment}
	if err := h.hub.Broadcast(event.PostID, msg); err != nil {
		h.logger.Warn("broadcast comment event failed", zap.String("post_id", event.PostID), zap.Error(err))
	}
}

// PublishCommentEvent 未启用 redis 时直接在进程内推送
func (h *WebSocketHandler) PublishCommentEvent(_ context.Context, event *dto.CommentEvent) error {
	h.Forward(event)
	return nil
}

func originChecker(allowedOrigins []string) func(r *http.Request) bool {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[strings.TrimRight(o, "/")] = struct{}{}
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if _, ok := allowed[origin]; ok {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
}
