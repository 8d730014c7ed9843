package event

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeView   Type = "view"
	TypeCart   Type = "cart"
	TypeSearch Type = "search"
)

// InteractionEvent 用户行为事件，key 为 user_id
type InteractionEvent struct {
	EventID   string    `json:"event_id"`
	Type      Type      `json:"type"`
	UserID    int64     `json:"user_id"`
	ProductID int64     `json:"product_id,omitempty"`
	Quantity  int       `json:"quantity,omitempty"`
	Text      string    `json:"text,omitempty"`
	At        time.Time `json:"at"`
}

func New(t Type, userID, productID int64) InteractionEvent {
	return InteractionEvent{
		EventID:   uuid.NewString(),
		Type:      t,
		UserID:    userID,
		ProductID: productID,
		At:        time.Now().UTC(),
	}
}

// Weight 热度权重：浏览 1，加购 3*数量，搜索不计。
// 购物车改数量或移除时 Quantity 为负的差值，热度同步扣减。
func (e InteractionEvent) Weight() float64 {
	switch e.Type {
	case TypeView:
		return 1
	case TypeCart:
		q := e.Quantity
		if q == 0 {
			q = 1
		}
		return float64(3 * q)
	default:
		return 0
	}
}

func (e InteractionEvent) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

func Unmarshal(b []byte) (InteractionEvent, error) {
	var e InteractionEvent
	err := json.Unmarshal(b, &e)
	return e, err
}

// Sink 事件出口：Kafka 或进程内直接处理
type Sink interface {
	Emit(ctx context.Context, e InteractionEvent) error
}

type SinkFunc func(ctx context.Context, e InteractionEvent) error

func (f SinkFunc) Emit(ctx context.Context, e InteractionEvent) error { return f(ctx, e) }

// Discard 丢弃所有事件
var Discard Sink = SinkFunc(func(context.Context, InteractionEvent) error { return nil })
