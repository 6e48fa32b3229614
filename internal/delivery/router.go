// Package delivery pushes stored messages to the recipient's live
// connections. Delivery is fire-and-forget relative to the durable
// write: it never blocks or fails the sender's acknowledgement, and a
// miss is recovered only by the recipient's next history fetch.
package delivery

import (
	"go.uber.org/zap"

	"github.com/someoxygen/chat-app/internal/domain"
	"github.com/someoxygen/chat-app/internal/metrics"
	"github.com/someoxygen/chat-app/internal/presence"
)

// Event names carried on the live channel.
const (
	EventMessage = "private-message"
	EventEdited  = "message-edited"
	EventDeleted = "message-deleted"
)

// Outcome records what a single delivery attempt reached. An offline
// recipient is a fact, not an error.
type Outcome struct {
	DeliveredTo      []string
	RecipientOffline bool
}

type Router struct {
	registry *presence.Registry
	log      *zap.SugaredLogger
}

func NewRouter(registry *presence.Registry, log *zap.SugaredLogger) *Router {
	return &Router{registry: registry, log: log}
}

// Deliver pushes the message to every live connection of its receiver.
// A push failure means the handle died between snapshot and use; it is
// swallowed and the handle defensively unregistered.
func (r *Router) Deliver(m *domain.Message) Outcome {
	return r.push(EventMessage, m.Receiver, m)
}

// Notify routes a lifecycle event (edit, delete) to the given user's
// live connections. Same best-effort semantics as Deliver.
func (r *Router) Notify(event, userID string, m *domain.Message) Outcome {
	return r.push(event, userID, m)
}

func (r *Router) push(event, userID string, m *domain.Message) Outcome {
	conns := r.registry.LiveConnections(userID)
	if len(conns) == 0 {
		return Outcome{RecipientOffline: true}
	}
	out := Outcome{DeliveredTo: make([]string, 0, len(conns))}
	for _, c := range conns {
		if err := c.Push(event, m); err != nil {
			r.log.Debugw("push to dead connection", "user", userID, "conn", c.ID(), "err", err)
			r.registry.Unregister(userID, c)
			continue
		}
		metrics.MessagesDelivered.Inc()
		out.DeliveredTo = append(out.DeliveredTo, c.ID())
	}
	if len(out.DeliveredTo) == 0 {
		out.RecipientOffline = true
	}
	return out
}
