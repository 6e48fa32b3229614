package ws

import (
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/someoxygen/chat-app/internal/domain"
	"github.com/someoxygen/chat-app/internal/metrics"
)

var errClientGone = errors.New("client gone")

// Client wraps one websocket connection. It implements presence.Conn:
// Push enqueues without blocking, and a full or closed send buffer is
// reported as a dead handle so the router can prune it.
type Client struct {
	id      string
	ws      *websocket.Conn
	send    chan Outbound
	done    chan struct{}
	limiter *rate.Limiter
	closed  atomic.Bool

	pingInterval  time.Duration
	writeDeadline time.Duration
	readDeadline  time.Duration
	maxMsgSize    int64
}

type ClientOptions struct {
	PingInterval  time.Duration
	WriteDeadline time.Duration
	ReadDeadline  time.Duration
	MaxMsgSize    int64
	SendBuffer    int
	RatePerSec    int
}

func NewClient(conn *websocket.Conn, opts ClientOptions) *Client {
	return &Client{
		id:            uuid.NewString(),
		ws:            conn,
		send:          make(chan Outbound, opts.SendBuffer),
		done:          make(chan struct{}),
		limiter:       rate.NewLimiter(rate.Limit(opts.RatePerSec), opts.RatePerSec),
		pingInterval:  opts.PingInterval,
		writeDeadline: opts.WriteDeadline,
		readDeadline:  opts.ReadDeadline,
		maxMsgSize:    opts.MaxMsgSize,
	}
}

func (c *Client) ID() string { return c.id }

// Push implements presence.Conn.
func (c *Client) Push(event string, m *domain.Message) error {
	return c.enqueue(Outbound{Type: event, Message: m})
}

func (c *Client) enqueue(out Outbound) error {
	if c.closed.Load() {
		return errClientGone
	}
	select {
	case c.send <- out:
		return nil
	default:
		// Slow consumer; treat like a dead handle rather than block
		// delivery for everyone else.
		return errClientGone
	}
}

// readPump reads frames until the connection dies and hands them to
// handle. It owns the read deadline and pong bookkeeping.
func (c *Client) readPump(handle func(Inbound)) {
	c.ws.SetReadLimit(c.maxMsgSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(c.readDeadline))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(c.readDeadline))
	})
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		if !c.limiter.Allow() {
			_ = c.enqueue(Outbound{Type: TypeError, Code: "rate_limited"})
			continue
		}
		var in Inbound
		if err := json.Unmarshal(data, &in); err != nil {
			_ = c.enqueue(Outbound{Type: TypeError, Code: "malformed", Detail: "invalid json"})
			continue
		}
		handle(in)
	}
}

// writePump drains the send buffer and keeps the connection alive with
// pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()
	for {
		select {
		case out := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(c.writeDeadline))
			if err := c.ws.WriteJSON(out); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(c.writeDeadline))
			if err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(time.Second)); err != nil {
				return
			}
		case <-c.done:
			_ = c.ws.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(time.Second))
			return
		}
	}
}

// shutdown makes further pushes fail fast and wakes the write pump. The
// send channel is never closed so a racing Push cannot panic.
func (c *Client) shutdown() {
	if c.closed.CompareAndSwap(false, true) {
		close(c.done)
		metrics.Connections.Dec()
	}
}
