package ws

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/someoxygen/chat-app/internal/apperrors"
	"github.com/someoxygen/chat-app/internal/auth"
	"github.com/someoxygen/chat-app/internal/chat"
	"github.com/someoxygen/chat-app/internal/config"
	"github.com/someoxygen/chat-app/internal/metrics"
	"github.com/someoxygen/chat-app/internal/presence"
	"github.com/someoxygen/chat-app/internal/session"
)

const opTimeout = 5 * time.Second

// Server accepts live connections and drives one session per
// connection.
type Server struct {
	svc      *chat.Service
	registry *presence.Registry
	tokens   *auth.TokenManager
	cfg      *config.Config
	log      *zap.SugaredLogger
}

func NewServer(svc *chat.Service, registry *presence.Registry, tokens *auth.TokenManager, cfg *config.Config, log *zap.SugaredLogger) *Server {
	return &Server{svc: svc, registry: registry, tokens: tokens, cfg: cfg, log: log}
}

// Handle returns the connection handler. A token may arrive as a query
// parameter (the session joins before the first frame) or later in an
// explicit join frame; until one verifies, every operation fails with
// not_authenticated.
func (s *Server) Handle() func(*websocket.Conn) {
	return func(conn *websocket.Conn) {
		client := NewClient(conn, ClientOptions{
			PingInterval:  s.cfg.PingInterval,
			WriteDeadline: s.cfg.WriteDeadline,
			ReadDeadline:  s.cfg.ReadDeadline,
			MaxMsgSize:    s.cfg.WS.MaxMessageSizeBytes,
			SendBuffer:    s.cfg.WS.SendBufferSize,
			RatePerSec:    s.cfg.WS.RateLimitPerSec,
		})
		metrics.Connections.Inc()

		sess := session.New(s.svc, s.registry, client, s.log)
		// Presence release is tied to every exit path, panics included.
		defer func() {
			sess.Close()
			client.shutdown()
		}()

		if token := conn.Query("token"); token != "" {
			s.join(sess, client, token, "")
		}

		go client.writePump()
		client.readPump(func(in Inbound) { s.dispatch(sess, client, in) })
	}
}

func (s *Server) dispatch(sess *session.Session, client *Client, in Inbound) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	switch in.Type {
	case TypeJoin:
		s.join(sess, client, in.Token, in.Ref)

	case TypeSend:
		m, out, err := sess.Send(ctx, in.Receiver, in.Text)
		if err != nil {
			frame := Outbound{Type: TypeError, Code: apperrors.Code(err), Ref: in.Ref}
			if errors.Is(err, apperrors.ErrStoreUnavailable) {
				// A failed append is ambiguous: the write may have
				// landed. Retrying blindly can duplicate the message.
				frame.Ambiguous = true
				frame.Detail = "send outcome unknown; fetch history before retrying"
			} else {
				frame.Detail = err.Error()
			}
			_ = client.enqueue(frame)
			return
		}
		// Ack reflects durability only; the offline flag is
		// informational, never an error.
		_ = client.enqueue(Outbound{
			Type:             TypeAck,
			Message:          m,
			RecipientOffline: out.RecipientOffline,
			Ref:              in.Ref,
		})

	case TypeEdit:
		m, err := sess.Edit(ctx, in.ID, in.Text)
		if err != nil {
			s.fail(client, in.Ref, err)
			return
		}
		_ = client.enqueue(Outbound{Type: TypeAck, Message: m, Ref: in.Ref})

	case TypeDelete:
		if err := sess.Delete(ctx, in.ID); err != nil {
			s.fail(client, in.Ref, err)
			return
		}
		_ = client.enqueue(Outbound{Type: TypeAck, Ref: in.Ref})

	case TypeDeleteAll:
		removed, err := sess.DeleteAll(ctx, in.Peer)
		if err != nil {
			s.fail(client, in.Ref, err)
			return
		}
		_ = client.enqueue(Outbound{Type: TypeAck, Removed: removed, Ref: in.Ref})

	default:
		s.log.Debugw("unknown frame type", "type", in.Type)
	}
}

func (s *Server) join(sess *session.Session, client *Client, token, ref string) {
	identity, err := s.tokens.Verify(token)
	if err != nil {
		// Any verification failure is surfaced uniformly.
		s.fail(client, ref, apperrors.ErrNotAuthenticated)
		return
	}
	if err := sess.Join(identity); err != nil {
		s.fail(client, ref, err)
		return
	}
	_ = client.enqueue(Outbound{Type: TypeAck, Ref: ref})
}

func (s *Server) fail(client *Client, ref string, err error) {
	out := Outbound{Type: TypeError, Code: apperrors.Code(err), Ref: ref}
	if !errors.Is(err, apperrors.ErrStoreUnavailable) {
		out.Detail = err.Error()
	}
	_ = client.enqueue(out)
}
