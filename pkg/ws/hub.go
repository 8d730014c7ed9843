package ws

import (
	"encoding/json"
	"sync"
	"time"

	"ShopRec/pkg/zlog"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const TypeRecommendationUpdate = "recommendation.update"

const (
	writeWait  = 10 * time.Second
	PongWait   = 60 * time.Second // 读超时，客户端需在此时间内回 pong 或发消息
	pingPeriod = PongWait * 9 / 10
)

// PushMessage 推送给客户端的推荐更新
type PushMessage struct {
	Type     string      `json:"type"`
	Strategy string      `json:"strategy"`
	Items    interface{} `json:"items"`
}

// Hub 按用户维护在线连接，一个用户可有多个连接
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[int64]map[*Client]struct{}),
	}
}

func (h *Hub) Register(c *Client) {
	if c == nil || c.userID <= 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.clients[c.userID]
	if set == nil {
		set = make(map[*Client]struct{})
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) Unregister(c *Client) {
	if c == nil || c.userID <= 0 {
		return
	}
	h.mu.Lock()
	set := h.clients[c.userID]
	if set != nil {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.userID)
		}
	}
	h.mu.Unlock()
	c.Close()
}

// Online 当前在线连接数
func (h *Hub) Online(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func (h *Hub) Send(userID int64, payload []byte) bool {
	if userID <= 0 || len(payload) == 0 {
		return false
	}

	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients[userID]))
	for c := range h.clients[userID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	ok := false
	for _, c := range targets {
		if c.enqueue(payload) {
			ok = true
			continue
		}
		// 发送队列满，视为慢连接直接断开
		h.Unregister(c)
	}
	return ok
}

func (h *Hub) SendJSON(userID int64, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	h.Send(userID, b)
	return nil
}

// Notify 推送推荐更新，用户不在线时静默丢弃
func (h *Hub) Notify(userID int64, strategy string, items interface{}) {
	if h.Online(userID) == 0 {
		return
	}
	msg := PushMessage{Type: TypeRecommendationUpdate, Strategy: strategy, Items: items}
	if err := h.SendJSON(userID, msg); err != nil {
		zlog.Warn("push recommendation failed", zap.Int64("user_id", userID), zap.Error(err))
	}
}

type Client struct {
	userID int64
	conn   *websocket.Conn
	send   chan []byte

	mu     sync.Mutex
	closed bool

	pingPeriod time.Duration
}

func NewClient(userID int64, conn *websocket.Conn) *Client {
	return &Client{
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, 64),

		pingPeriod: pingPeriod,
	}
}

func (c *Client) enqueue(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// WritePump 是连接上唯一的写者，定时发 ping 维持读超时
func (c *Client) WritePump() {
	if c.conn == nil {
		return
	}
	ticker := time.NewTicker(c.pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				zlog.Warn("websocket write failed", zap.Int64("user_id", c.userID), zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				zlog.Debug("websocket ping failed", zap.Int64("user_id", c.userID), zap.Error(err))
				return
			}
		}
	}
}
