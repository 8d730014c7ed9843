package mq

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"ShopRec/internal/modules/interaction/domain/event"
)

type Message struct {
	Topic   string
	Key     []byte
	Value   []byte
	Headers map[string]string
}

type PublishResult struct {
	Partition int32
	Offset    int64
}

type Publisher interface {
	Publish(ctx context.Context, msg Message) (PublishResult, error)
	Close() error
}

type Handler interface {
	Handle(ctx context.Context, msg Message) error
}

type HandlerFunc func(ctx context.Context, msg Message) error

func (f HandlerFunc) Handle(ctx context.Context, msg Message) error { return f(ctx, msg) }

type Consumer interface {
	Run(ctx context.Context, handler Handler) error
	Close() error
}

const headerEventType = "event_type"

// ErrUndecodable 消息体无法解码，重投也不会成功
var ErrUndecodable = errors.New("undecodable message")

// publisherSink 把交互事件写入 topic，key 为 user_id 保证同一用户有序
type publisherSink struct {
	pub   Publisher
	topic string
}

func NewEventSink(pub Publisher, topic string) event.Sink {
	return &publisherSink{pub: pub, topic: topic}
}

func (s *publisherSink) Emit(ctx context.Context, e event.InteractionEvent) error {
	body, err := e.Marshal()
	if err != nil {
		return err
	}
	_, err = s.pub.Publish(ctx, Message{
		Topic:   s.topic,
		Key:     []byte(strconv.FormatInt(e.UserID, 10)),
		Value:   body,
		Headers: map[string]string{headerEventType: string(e.Type)},
	})
	return err
}

// EventHandler 把消息解码为交互事件后交给 fn
func EventHandler(fn func(ctx context.Context, e event.InteractionEvent) error) Handler {
	return HandlerFunc(func(ctx context.Context, msg Message) error {
		e, err := event.Unmarshal(msg.Value)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUndecodable, err)
		}
		return fn(ctx, e)
	})
}
