package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_Notify(t *testing.T) {
	h := NewHub()
	c := NewClient(7, nil)
	h.Register(c)
	require.Equal(t, 1, h.Online(7))

	h.Notify(7, "content", []map[string]any{{"id": 1, "name": "Mug"}})
	h.Notify(8, "content", nil) // 不在线

	select {
	case raw := <-c.send:
		var msg PushMessage
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, TypeRecommendationUpdate, msg.Type)
		assert.Equal(t, "content", msg.Strategy)
	default:
		t.Fatal("expected a queued message")
	}

	h.Unregister(c)
	assert.Equal(t, 0, h.Online(7))
	assert.False(t, h.Send(7, []byte("x")))
}

func TestHub_SlowClientDropped(t *testing.T) {
	h := NewHub()
	c := NewClient(3, nil)
	h.Register(c)
	for i := 0; i < cap(c.send); i++ {
		require.True(t, h.Send(3, []byte("x")))
	}
	assert.False(t, h.Send(3, []byte("overflow")))
	assert.Equal(t, 0, h.Online(3))
}

func TestClient_WritePumpSendsPings(t *testing.T) {
	assert.Less(t, pingPeriod, PongWait)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		c := NewClient(1, conn)
		c.pingPeriod = 20 * time.Millisecond
		go func() {
			// 连接断开后关闭 send，WritePump 退出
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					c.Close()
					return
				}
			}
		}()
		c.WritePump()
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	pings := make(chan struct{}, 8)
	conn.SetPingHandler(func(string) error {
		select {
		case pings <- struct{}{}:
		default:
		}
		return nil
	})
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for i := 0; i < 2; i++ {
		select {
		case <-pings:
		case <-time.After(2 * time.Second):
			t.Fatal("expected a ping from the server")
		}
	}
}
