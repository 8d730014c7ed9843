package handler

import (
	"net/http"
	"time"

	"ShopRec/internal/modules/recommend/application/service"
	"ShopRec/pkg/util/myjwt"
	"ShopRec/pkg/ws"
	"ShopRec/pkg/zlog"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type WsHandler struct {
	hub *ws.Hub
	svc service.RecommendService
}

func NewWsHandler(hub *ws.Hub, svc service.RecommendService) *WsHandler {
	return &WsHandler{hub: hub, svc: svc}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// clientMessage 客户端只会发送 {"type":"refresh"}
type clientMessage struct {
	Type string `json:"type"`
}

// Connect GET /wss?token=
// 浏览器 WebSocket 不能带自定义 Header，token 走 query，在这里手动校验
func (h *WsHandler) Connect(c *gin.Context) {
	claims, err := myjwt.ParseToken(c.Query("token"))
	if err != nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zlog.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := ws.NewClient(claims.UserID, conn)
	h.hub.Register(client)
	defer h.hub.Unregister(client)

	conn.SetReadLimit(1 << 16)
	_ = conn.SetReadDeadline(time.Now().Add(ws.PongWait))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(ws.PongWait))
		return nil
	})

	go client.WritePump()

	for {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(ws.PongWait))
		if msg.Type != "refresh" {
			continue
		}
		res, err := h.svc.ForUser(c.Request.Context(), claims.UserID)
		if err != nil {
			_ = h.hub.SendJSON(claims.UserID, map[string]interface{}{"type": "error", "message": err.Error()})
			continue
		}
		h.hub.Notify(claims.UserID, res.Strategy, res.Items)
	}
}
