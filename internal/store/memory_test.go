package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/someoxygen/chat-app/internal/apperrors"
)

func TestAppendThenList(t *testing.T) {
	req := require.New(t)
	s := NewMemoryStore()
	ctx := context.Background()

	m, err := s.Append(ctx, "alice", "bob", "hello")
	req.NoError(err)
	req.NotEmpty(m.ID)
	req.False(m.Timestamp.IsZero())
	req.False(m.Edited)

	msgs, err := s.ListConversation(ctx, "alice", "bob")
	req.NoError(err)
	req.Len(msgs, 1)
	req.Equal("alice", msgs[0].Sender)
	req.Equal("bob", msgs[0].Receiver)
	req.Equal("hello", msgs[0].Text)
	req.Equal(m.ID, msgs[0].ID)
}

func TestListPairSymmetry(t *testing.T) {
	req := require.New(t)
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.Append(ctx, "alice", "bob", "hi bob")
	req.NoError(err)
	_, err = s.Append(ctx, "bob", "alice", "hi alice")
	req.NoError(err)
	_, err = s.Append(ctx, "alice", "carol", "unrelated")
	req.NoError(err)

	ab, err := s.ListConversation(ctx, "alice", "bob")
	req.NoError(err)
	ba, err := s.ListConversation(ctx, "bob", "alice")
	req.NoError(err)
	req.Equal(ab, ba)
	req.Len(ab, 2)
}

func TestListOrderedByTimestampThenSeq(t *testing.T) {
	req := require.New(t)
	s := NewMemoryStore()
	ctx := context.Background()

	var ids []string
	for i := 0; i < 20; i++ {
		m, err := s.Append(ctx, "alice", "bob", "msg")
		req.NoError(err)
		ids = append(ids, m.ID)
	}
	msgs, err := s.ListConversation(ctx, "alice", "bob")
	req.NoError(err)
	req.Len(msgs, 20)
	// Appends happen fast enough to share timestamps; the insertion
	// sequence must keep them in issue order anyway.
	for i, m := range msgs {
		req.Equal(ids[i], m.ID)
	}
}

func TestEdit(t *testing.T) {
	req := require.New(t)
	s := NewMemoryStore()
	ctx := context.Background()

	m, err := s.Append(ctx, "alice", "bob", "helo")
	req.NoError(err)

	edited, err := s.Edit(ctx, m.ID, "hello")
	req.NoError(err)
	req.Equal("hello", edited.Text)
	req.True(edited.Edited)
	req.Equal("alice", edited.Sender)
	req.Equal("bob", edited.Receiver)

	_, err = s.Edit(ctx, "no-such-id", "x")
	req.ErrorIs(err, apperrors.ErrNotFound)
}

func TestDeleteTwice(t *testing.T) {
	req := require.New(t)
	s := NewMemoryStore()
	ctx := context.Background()

	m, err := s.Append(ctx, "alice", "bob", "bye")
	req.NoError(err)

	req.NoError(s.Delete(ctx, m.ID))
	req.ErrorIs(s.Delete(ctx, m.ID), apperrors.ErrNotFound)

	_, err = s.Edit(ctx, m.ID, "x")
	req.ErrorIs(err, apperrors.ErrNotFound)
}

func TestDeleteConversationScoped(t *testing.T) {
	req := require.New(t)
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.Append(ctx, "alice", "bob", "one")
	req.NoError(err)
	_, err = s.Append(ctx, "bob", "alice", "two")
	req.NoError(err)
	_, err = s.Append(ctx, "alice", "carol", "keep me")
	req.NoError(err)

	removed, err := s.DeleteConversation(ctx, "alice", "bob")
	req.NoError(err)
	req.EqualValues(2, removed)

	ab, err := s.ListConversation(ctx, "alice", "bob")
	req.NoError(err)
	req.Empty(ab)

	ac, err := s.ListConversation(ctx, "alice", "carol")
	req.NoError(err)
	req.Len(ac, 1)

	// Wiping an empty conversation is not an error.
	removed, err = s.DeleteConversation(ctx, "alice", "bob")
	req.NoError(err)
	req.Zero(removed)
}

func TestConcurrentDeleteExactlyOneWins(t *testing.T) {
	req := require.New(t)
	s := NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		m, err := s.Append(ctx, "alice", "bob", "contested")
		req.NoError(err)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for j := 0; j < 2; j++ {
			wg.Add(1)
			go func(j int) {
				defer wg.Done()
				errs[j] = s.Delete(ctx, m.ID)
			}(j)
		}
		wg.Wait()

		if errs[0] == nil {
			req.ErrorIs(errs[1], apperrors.ErrNotFound)
		} else {
			req.ErrorIs(errs[0], apperrors.ErrNotFound)
			req.NoError(errs[1])
		}
	}
}

func TestReturnedMessageIsACopy(t *testing.T) {
	req := require.New(t)
	s := NewMemoryStore()
	ctx := context.Background()

	m, err := s.Append(ctx, "alice", "bob", "original")
	req.NoError(err)
	m.Text = "tampered"

	got, err := s.Get(ctx, m.ID)
	req.NoError(err)
	req.Equal("original", got.Text)
}
