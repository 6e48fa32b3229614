package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/someoxygen/chat-app/internal/domain"
)

func TestCreateAndFind(t *testing.T) {
	req := require.New(t)
	r := NewMemoryRepository()
	ctx := context.Background()

	u := &domain.User{ID: "u1", Username: "alice", PasswordHash: "h", CreatedAt: time.Now()}
	req.NoError(r.Create(ctx, u))
	req.ErrorIs(r.Create(ctx, u), ErrAlreadyExists)

	got, err := r.FindByUsername(ctx, "alice")
	req.NoError(err)
	req.Equal("u1", got.ID)

	_, err = r.FindByUsername(ctx, "bob")
	req.ErrorIs(err, ErrNotFound)
}

func TestUpdate(t *testing.T) {
	req := require.New(t)
	r := NewMemoryRepository()
	ctx := context.Background()

	u := &domain.User{ID: "u1", Username: "alice"}
	req.ErrorIs(r.Update(ctx, u), ErrNotFound)
	req.NoError(r.Create(ctx, u))

	now := time.Now().UTC()
	u.LastLoginAt = &now
	req.NoError(r.Update(ctx, u))

	got, err := r.FindByUsername(ctx, "alice")
	req.NoError(err)
	req.NotNil(got.LastLoginAt)
}

func TestListUsernamesSorted(t *testing.T) {
	req := require.New(t)
	r := NewMemoryRepository()
	ctx := context.Background()

	for _, name := range []string{"carol", "alice", "bob"} {
		req.NoError(r.Create(ctx, &domain.User{ID: name, Username: name}))
	}
	names, err := r.ListUsernames(ctx)
	req.NoError(err)
	req.Equal([]string{"alice", "bob", "carol"}, names)
}

func TestStoredUserIsACopy(t *testing.T) {
	req := require.New(t)
	r := NewMemoryRepository()
	ctx := context.Background()

	u := &domain.User{ID: "u1", Username: "alice", PasswordHash: "original"}
	req.NoError(r.Create(ctx, u))
	u.PasswordHash = "tampered"

	got, err := r.FindByUsername(ctx, "alice")
	req.NoError(err)
	req.Equal("original", got.PasswordHash)
}
