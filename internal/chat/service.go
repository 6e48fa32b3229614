// Package chat composes the message store, delivery router and event
// publisher behind the operations sessions and REST handlers share.
// Ownership is always checked against the verified identity passed in
// by the caller, never against request-supplied fields.
package chat

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/someoxygen/chat-app/internal/apperrors"
	"github.com/someoxygen/chat-app/internal/delivery"
	"github.com/someoxygen/chat-app/internal/domain"
	"github.com/someoxygen/chat-app/internal/events"
	"github.com/someoxygen/chat-app/internal/metrics"
	"github.com/someoxygen/chat-app/internal/store"
)

type Service struct {
	store  store.MessageStore
	router *delivery.Router
	events *events.Publisher
	log    *zap.SugaredLogger
}

func NewService(st store.MessageStore, router *delivery.Router, pub *events.Publisher, log *zap.SugaredLogger) *Service {
	return &Service{store: st, router: router, events: pub, log: log}
}

// Send durably appends the message and then pushes it to the
// recipient's live connections. The returned message (with assigned id
// and timestamp) and the durable write alone decide the sender's
// acknowledgement; the delivery outcome is informational.
func (s *Service) Send(ctx context.Context, sender, receiver, text string) (*domain.Message, delivery.Outcome, error) {
	if sender == "" || receiver == "" || text == "" {
		return nil, delivery.Outcome{}, fmt.Errorf("%w: sender, receiver and text are required", apperrors.ErrMalformed)
	}
	m, err := s.store.Append(ctx, sender, receiver, text)
	if err != nil {
		return nil, delivery.Outcome{}, err
	}
	metrics.MessagesStored.Inc()
	out := s.router.Deliver(m)
	s.events.MessageCreated(ctx, m)
	return m, out, nil
}

// Edit replaces the text of a message owned by actor. The updated
// message is also routed to the recipient so live clients converge
// without a refetch.
func (s *Service) Edit(ctx context.Context, actor, id, newText string) (*domain.Message, error) {
	if newText == "" {
		return nil, fmt.Errorf("%w: text is required", apperrors.ErrMalformed)
	}
	cur, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if cur.Sender != actor {
		return nil, apperrors.ErrForbidden
	}
	// The message can vanish between the ownership read and the write;
	// the store then reports NotFound, which is the correct outcome of
	// losing an edit/delete race.
	m, err := s.store.Edit(ctx, id, newText)
	if err != nil {
		return nil, err
	}
	s.router.Notify(delivery.EventEdited, m.Receiver, m)
	s.events.MessageEdited(ctx, m)
	return m, nil
}

// Delete removes a single message owned by actor. Repeating a delete
// yields NotFound, which retrying callers treat as success.
func (s *Service) Delete(ctx context.Context, actor, id string) error {
	cur, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if cur.Sender != actor {
		return apperrors.ErrForbidden
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.router.Notify(delivery.EventDeleted, cur.Receiver, cur)
	s.events.MessageDeleted(ctx, cur)
	return nil
}

// DeleteAll wipes the conversation between actor and peer in both
// directions. It targets the pair, not arbitrary ids, so no per-message
// ownership check is needed.
func (s *Service) DeleteAll(ctx context.Context, actor, peer string) (int64, error) {
	if peer == "" {
		return 0, fmt.Errorf("%w: peer is required", apperrors.ErrMalformed)
	}
	removed, err := s.store.DeleteConversation(ctx, actor, peer)
	if err != nil {
		return 0, err
	}
	conv := domain.NewConversation(actor, peer)
	s.events.ConversationDeleted(ctx, conv.A+":"+conv.B, removed)
	return removed, nil
}

// History returns the merged two-direction history in ascending
// timestamp order. Only a party of the conversation may read it.
func (s *Service) History(ctx context.Context, actor, userA, userB string) ([]*domain.Message, error) {
	if !domain.NewConversation(userA, userB).Has(actor) {
		return nil, apperrors.ErrForbidden
	}
	return s.store.ListConversation(ctx, userA, userB)
}
