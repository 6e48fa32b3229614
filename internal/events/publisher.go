// Package events publishes message lifecycle events to Kafka for
// downstream consumers. Publishing is best effort and never on the
// request path's critical section; a nil *Publisher is a valid no-op.
package events

import (
	"context"
	"encoding/json"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/someoxygen/chat-app/internal/domain"
)

const (
	TypeCreated             = "message.created"
	TypeEdited              = "message.edited"
	TypeDeleted             = "message.deleted"
	TypeConversationDeleted = "conversation.deleted"
)

type Envelope struct {
	Type    string          `json:"type"`
	At      time.Time       `json:"at"`
	Message *domain.Message `json:"message,omitempty"`
	// Removed carries the bulk-delete count for conversation wipes.
	Removed int64 `json:"removed,omitempty"`
}

type Publisher struct {
	writer *kafkago.Writer
	log    *zap.SugaredLogger
}

func NewPublisher(brokers []string, topic string, log *zap.SugaredLogger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireOne,
		Async:        true,
	}
	return &Publisher{writer: w, log: log}
}

func (p *Publisher) publish(ctx context.Context, key string, env Envelope) {
	if p == nil {
		return
	}
	b, err := json.Marshal(env)
	if err != nil {
		return
	}
	msg := kafkago.Message{
		Key:   []byte(key),
		Value: b,
		Time:  time.Now(),
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Warnw("event publish failed", "type", env.Type, "err", err)
	}
}

func (p *Publisher) MessageCreated(ctx context.Context, m *domain.Message) {
	if p == nil {
		return
	}
	p.publish(ctx, m.ID, Envelope{Type: TypeCreated, At: time.Now().UTC(), Message: m})
}

func (p *Publisher) MessageEdited(ctx context.Context, m *domain.Message) {
	if p == nil {
		return
	}
	p.publish(ctx, m.ID, Envelope{Type: TypeEdited, At: time.Now().UTC(), Message: m})
}

func (p *Publisher) MessageDeleted(ctx context.Context, m *domain.Message) {
	if p == nil {
		return
	}
	p.publish(ctx, m.ID, Envelope{Type: TypeDeleted, At: time.Now().UTC(), Message: m})
}

func (p *Publisher) ConversationDeleted(ctx context.Context, key string, removed int64) {
	if p == nil {
		return
	}
	p.publish(ctx, key, Envelope{Type: TypeConversationDeleted, At: time.Now().UTC(), Removed: removed})
}

func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
