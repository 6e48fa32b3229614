package user

import (
	"context"
	"sort"
	"sync"

	"github.com/someoxygen/chat-app/internal/domain"
)

type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User // username -> user
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]*domain.User)}
}

func (r *MemoryRepository) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.Username]; ok {
		return ErrAlreadyExists
	}
	c := *u
	r.users[u.Username] = &c
	return nil
}

func (r *MemoryRepository) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[username]
	if !ok {
		return nil, ErrNotFound
	}
	c := *u
	return &c, nil
}

func (r *MemoryRepository) Update(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.Username]; !ok {
		return ErrNotFound
	}
	c := *u
	r.users[u.Username] = &c
	return nil
}

func (r *MemoryRepository) ListUsernames(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.users))
	for name := range r.users {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}
