package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/someoxygen/chat-app/internal/domain"
	"github.com/someoxygen/chat-app/internal/user"
)

const refreshTokenPrefix = "refresh_token:"

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserAlreadyExists   = errors.New("user already exists")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

type Tokens struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresAt    int64  `json:"expires_at"`
}

// Service owns credential issuance: register, login, refresh, logout.
// The refresh-token store is Redis and optional; without it logins
// still work, only refresh is disabled.
type Service struct {
	users      user.Repository
	tokens     *TokenManager
	redis      *redis.Client // optional
	refreshTTL time.Duration
}

func NewService(users user.Repository, tokens *TokenManager, rdb *redis.Client, refreshTTL time.Duration) *Service {
	return &Service{users: users, tokens: tokens, redis: rdb, refreshTTL: refreshTTL}
}

func (s *Service) Register(ctx context.Context, username, password string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, user.ErrAlreadyExists) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}
	return u, nil
}

func (s *Service) Login(ctx context.Context, username, password string) (*Tokens, error) {
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	tokens, err := s.issue(ctx, u.Username)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	u.LastLoginAt = &now
	if err := s.users.Update(ctx, u); err != nil {
		// Login already succeeded; the stale last-login stamp is not
		// worth failing it over.
		return tokens, nil
	}
	return tokens, nil
}

// Refresh rotates the stored refresh token and issues a new pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Tokens, error) {
	if s.redis == nil {
		return nil, ErrInvalidRefreshToken
	}
	username, err := s.tokens.Verify(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}
	stored, err := s.redis.Get(ctx, refreshTokenPrefix+username).Result()
	if err != nil || stored != refreshToken {
		return nil, ErrInvalidRefreshToken
	}
	s.redis.Del(ctx, refreshTokenPrefix+username)
	return s.issue(ctx, username)
}

// Logout revokes the stored refresh token. The access token stays valid
// until its TTL runs out.
func (s *Service) Logout(ctx context.Context, username string) {
	if s.redis == nil {
		return
	}
	s.redis.Del(ctx, refreshTokenPrefix+username)
}

func (s *Service) issue(ctx context.Context, username string) (*Tokens, error) {
	access, exp, err := s.tokens.Issue(username)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	t := &Tokens{AccessToken: access, ExpiresAt: exp.Unix()}

	if s.redis != nil {
		refresh, _, err := s.tokens.IssueFor(username, s.refreshTTL)
		if err != nil {
			return nil, fmt.Errorf("issue refresh token: %w", err)
		}
		if err := s.redis.Set(ctx, refreshTokenPrefix+username, refresh, s.refreshTTL).Err(); err != nil {
			return nil, fmt.Errorf("store refresh token: %w", err)
		}
		t.RefreshToken = refresh
	}
	return t, nil
}
