package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/someoxygen/chat-app/internal/user"
)

func newAuthService() *Service {
	tokens := NewTokenManager("test-secret", time.Minute)
	return NewService(user.NewMemoryRepository(), tokens, nil, 7*24*time.Hour)
}

func TestRegisterThenLogin(t *testing.T) {
	req := require.New(t)
	svc := newAuthService()
	ctx := context.Background()

	u, err := svc.Register(ctx, "alice", "s3cret")
	req.NoError(err)
	req.NotEmpty(u.ID)
	req.Equal("alice", u.Username)
	// The stored hash is never the plaintext.
	req.NotEqual("s3cret", u.PasswordHash)

	tokens, err := svc.Login(ctx, "alice", "s3cret")
	req.NoError(err)
	req.NotEmpty(tokens.AccessToken)
	// Without Redis there is no refresh token.
	req.Empty(tokens.RefreshToken)

	identity, err := NewTokenManager("test-secret", time.Minute).Verify(tokens.AccessToken)
	req.NoError(err)
	req.Equal("alice", identity)
}

func TestRegisterDuplicate(t *testing.T) {
	req := require.New(t)
	svc := newAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "s3cret")
	req.NoError(err)
	_, err = svc.Register(ctx, "alice", "other")
	req.ErrorIs(err, ErrUserAlreadyExists)
}

func TestRegisterEmptyFields(t *testing.T) {
	req := require.New(t)
	svc := newAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "", "s3cret")
	req.ErrorIs(err, ErrInvalidCredentials)
	_, err = svc.Register(ctx, "alice", "")
	req.ErrorIs(err, ErrInvalidCredentials)
}

func TestLoginBadCredentials(t *testing.T) {
	req := require.New(t)
	svc := newAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "s3cret")
	req.NoError(err)

	// Wrong password and unknown user are indistinguishable to the
	// caller.
	_, err = svc.Login(ctx, "alice", "wrong")
	req.ErrorIs(err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody", "s3cret")
	req.ErrorIs(err, ErrInvalidCredentials)
}

func TestRefreshDisabledWithoutRedis(t *testing.T) {
	svc := newAuthService()
	_, err := svc.Refresh(context.Background(), "whatever")
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}
