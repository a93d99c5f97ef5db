package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 32
)

// Hub 按文章分组的 websocket 连接
type Hub struct {
	// 同一篇文章可以被多个读者同时打开
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
	logger  *zap.Logger
}

// Client 只有自己的 writePump 会写连接，Broadcast 只往 send 里投递
type Client struct {
	PostID string
	Conn   *websocket.Conn
	send   chan []byte
}

type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
		logger:  logger,
	}
}

// Register 登记连接并启动写协程
func (h *Hub) Register(client *Client) {
	client.send = make(chan []byte, sendBuffer)

	h.mu.Lock()
	if h.clients[client.PostID] == nil {
		h.clients[client.PostID] = make(map[*Client]struct{})
	}
	h.clients[client.PostID][client] = struct{}{}
	count := len(h.clients[client.PostID])
	h.mu.Unlock()

	h.logger.Debug("websocket connected",
		zap.String("post_id", client.PostID),
		zap.Int("post_conns", count),
	)

	go h.writePump(client)
}

// Unregister 移除连接并关闭 send，可重复调用
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.clients[client.PostID]
	if !ok {
		return
	}
	if _, ok := conns[client]; !ok {
		return
	}
	delete(conns, client)
	close(client.send)
	if len(conns) == 0 {
		delete(h.clients, client.PostID)
	}
	h.logger.Debug("websocket disconnected", zap.String("post_id", client.PostID))
}

// Broadcast 向正在查看该文章的所有连接推送消息，不会阻塞在慢连接上
func (h *Hub) Broadcast(postID string, msg *Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	var slow []*Client
	h.mu.RLock()
	for c := range h.clients[postID] {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	// 发送队列已满说明对端不再读取，直接断开
	for _, c := range slow {
		h.logger.Warn("websocket client too slow, dropping", zap.String("post_id", postID))
		h.Unregister(c)
		c.Conn.Close()
	}
	return nil
}

// ReadPump 读取并丢弃客户端消息，维持心跳，连接断开后注销
func (h *Hub) ReadPump(client *Client) {
	defer func() {
		h.Unregister(client)
		client.Conn.Close()
	}()

	client.Conn.SetReadLimit(maxMessageSize)
	_ = client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	client.Conn.SetPongHandler(func(string) error {
		return client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.Conn.Close()
	}()

	for {
		select {
		case data, ok := <-client.send:
			_ = client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.logger.Debug("websocket write failed", zap.String("post_id", client.PostID), zap.Error(err))
				h.Unregister(client)
				return
			}
		case <-ticker.C:
			_ = client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.Unregister(client)
				return
			}
		}
	}
}

// Watchers 正在查看某篇文章的连接数
func (h *Hub) Watchers(postID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[postID])
}

// ConnectionCount 获取在线连接数
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, conns := range h.clients {
		total += len(conns)
	}
	return total
}
