// Package session holds the per-connection state machine. A session is
// created Unauthenticated, becomes Joined when the connection announces
// a verified identity, and Active on its first operation. Close always
// releases the presence registration, whatever path the connection died
// on.
package session

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/someoxygen/chat-app/internal/apperrors"
	"github.com/someoxygen/chat-app/internal/chat"
	"github.com/someoxygen/chat-app/internal/delivery"
	"github.com/someoxygen/chat-app/internal/domain"
	"github.com/someoxygen/chat-app/internal/presence"
)

type State int

const (
	Unauthenticated State = iota
	Joined
	Active
	Closed
)

type Session struct {
	svc      *chat.Service
	registry *presence.Registry
	conn     presence.Conn
	log      *zap.SugaredLogger

	mu       sync.Mutex
	state    State
	identity string
}

func New(svc *chat.Service, registry *presence.Registry, conn presence.Conn, log *zap.SugaredLogger) *Session {
	return &Session{svc: svc, registry: registry, conn: conn, log: log}
}

// Join moves the session to Joined under the given verified identity
// and registers the connection for delivery. An empty identity keeps
// the session Unauthenticated.
func (s *Session) Join(identity string) error {
	if identity == "" {
		return apperrors.ErrNotAuthenticated
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Closed {
		return apperrors.ErrNotAuthenticated
	}
	if s.state != Unauthenticated {
		// Re-join under the same identity is harmless; switching
		// identities mid-connection is not allowed.
		if identity != s.identity {
			return apperrors.ErrForbidden
		}
		return nil
	}
	s.identity = identity
	s.state = Joined
	s.registry.Register(identity, s.conn)
	s.log.Debugw("session joined", "user", identity, "conn", s.conn.ID())
	return nil
}

// Identity returns the joined identity, empty while Unauthenticated.
func (s *Session) Identity() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// require checks the session is usable and marks it Active.
func (s *Session) require() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Unauthenticated || s.state == Closed {
		return "", apperrors.ErrNotAuthenticated
	}
	s.state = Active
	return s.identity, nil
}

func (s *Session) Send(ctx context.Context, receiver, text string) (*domain.Message, delivery.Outcome, error) {
	identity, err := s.require()
	if err != nil {
		return nil, delivery.Outcome{}, err
	}
	return s.svc.Send(ctx, identity, receiver, text)
}

func (s *Session) Edit(ctx context.Context, id, newText string) (*domain.Message, error) {
	identity, err := s.require()
	if err != nil {
		return nil, err
	}
	return s.svc.Edit(ctx, identity, id, newText)
}

func (s *Session) Delete(ctx context.Context, id string) error {
	identity, err := s.require()
	if err != nil {
		return err
	}
	return s.svc.Delete(ctx, identity, id)
}

func (s *Session) DeleteAll(ctx context.Context, peer string) (int64, error) {
	identity, err := s.require()
	if err != nil {
		return 0, err
	}
	return s.svc.DeleteAll(ctx, identity, peer)
}

func (s *Session) History(ctx context.Context, peer string) ([]*domain.Message, error) {
	identity, err := s.require()
	if err != nil {
		return nil, err
	}
	return s.svc.History(ctx, identity, identity, peer)
}

// Close releases the presence registration. It is idempotent and must
// run on every exit path, normal or not; in-flight store writes are
// not cancelled.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Closed {
		return
	}
	if s.identity != "" {
		s.registry.Unregister(s.identity, s.conn)
	}
	s.state = Closed
}
