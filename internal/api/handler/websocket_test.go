package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/blog_go_server/internal/model"
	"github.com/qs3c/blog_go_server/internal/model/dto"
	"github.com/qs3c/blog_go_server/internal/pkg/ws"
)

func setupWebSocketServer(t *testing.T, allowedOrigins []string) (*WebSocketHandler, *ws.Hub, *httptest.Server) {
	t.Helper()

	hub := ws.NewHub(nil)
	handler := NewWebSocketHandler(hub, allowedOrigins, nil)

	router := gin.New()
	router.GET("/api/comments/ws", handler.Handle)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return handler, hub, server
}

func wsURL(server *httptest.Server, query string) string {
	return "ws" + strings.TrimPrefix(server.URL, "http") + "/api/comments/ws" + query
}

func commentEvent(postID string, status model.CommentStatus) *dto.CommentEvent {
	return &dto.CommentEvent{
		Type:   dto.EventCommentCreated,
		PostID: postID,
		Comment: &dto.CommentItem{
			ID:      "c-" + string(status),
			PostID:  postID,
			Content: "hi",
			Status:  status,
		},
	}
}

func TestWebSocketHandler_ForwardsApprovedEvents(t *testing.T) {
	handler, hub, server := setupWebSocketServer(t, nil)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(server, "?post_id=P1"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Watchers("P1") == 1 }, time.Second, 10*time.Millisecond)

	// pending comments are not pushed, the approved one that follows is
	handler.Forward(commentEvent("P1", model.StatusPending))
	require.NoError(t, handler.PublishCommentEvent(context.Background(), commentEvent("P1", model.StatusApproved)))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Type string          `json:"type"`
		Data dto.CommentItem `json:"data"`
	}
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, dto.EventCommentCreated, msg.Type)
	assert.Equal(t, "c-approved", msg.Data.ID)
	assert.Equal(t, model.StatusApproved, msg.Data.Status)
}

func TestWebSocketHandler_OnlyWatchersOfPost(t *testing.T) {
	handler, hub, server := setupWebSocketServer(t, nil)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(server, "?post_id=P2"), nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.Watchers("P2") == 1 }, time.Second, 10*time.Millisecond)

	handler.Forward(commentEvent("P1", model.StatusApproved))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
}

func TestWebSocketHandler_UnregistersOnClose(t *testing.T) {
	_, hub, server := setupWebSocketServer(t, nil)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(server, "?post_id=P3"), nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.Watchers("P3") == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.ConnectionCount() == 0 }, time.Second, 10*time.Millisecond)
}

func TestWebSocketHandler_MissingPostID(t *testing.T) {
	_, _, server := setupWebSocketServer(t, nil)

	resp, err := http.Get(server.URL + "/api/comments/ws")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWebSocketHandler_ForwardIgnoresNil(t *testing.T) {
	handler, _, _ := setupWebSocketServer(t, nil)

	assert.NotPanics(t, func() {
		handler.Forward(nil)
		handler.Forward(&dto.CommentEvent{PostID: "P1"})
	})
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://blog.example.com/"})

	newReq := func(origin string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "http://api.example.com/api/comments/ws", nil)
		if origin != "" {
			req.Header.Set("Origin", origin)
		}
		return req
	}

	assert.True(t, check(newReq("")))
	assert.True(t, check(newReq("https://blog.example.com")))
	assert.True(t, check(newReq("http://api.example.com")))
	assert.False(t, check(newReq("https://evil.example.com")))
}
