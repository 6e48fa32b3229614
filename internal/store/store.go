// Package store persists private messages keyed by the conversation
// pair. Two implementations exist: an in-memory store used by tests and
// single-node dev setups, and a MongoDB store for real deployments.
package store

import (
	"context"

	"github.com/someoxygen/chat-app/internal/domain"
)

// MessageStore is the durable message contract. Append assigns id,
// timestamp and sequence server-side. Edit and Delete on a given id are
// linearizable: of a concurrent edit+delete exactly one wins and the
// loser observes apperrors.ErrNotFound.
type MessageStore interface {
	// Append records a new message and returns it with store-assigned
	// id, timestamp and sequence.
	Append(ctx context.Context, sender, receiver, text string) (*domain.Message, error)

	// Get returns the message by id, or apperrors.ErrNotFound.
	Get(ctx context.Context, id string) (*domain.Message, error)

	// Edit replaces the text and sets the edited flag. No ownership
	// check happens here; that is the session's job.
	Edit(ctx context.Context, id, newText string) (*domain.Message, error)

	// Delete removes the message. A repeat call after success returns
	// apperrors.ErrNotFound, which callers treat as success-equivalent
	// when retrying.
	Delete(ctx context.Context, id string) error

	// DeleteConversation removes every message between the two users in
	// both directions and returns how many were removed. Zero is not an
	// error.
	DeleteConversation(ctx context.Context, userA, userB string) (int64, error)

	// ListConversation returns the merged history of both directions in
	// ascending timestamp order, ties broken by insertion sequence.
	ListConversation(ctx context.Context, userA, userB string) ([]*domain.Message, error)
}
