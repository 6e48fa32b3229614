package presence

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/someoxygen/chat-app/internal/domain"
)

type fakeConn struct {
	id string
}

func (f *fakeConn) ID() string { return f.id }

func (f *fakeConn) Push(string, *domain.Message) error { return nil }

func TestRegisterIdempotent(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()
	c := &fakeConn{id: "c1"}

	r.Register("alice", c)
	r.Register("alice", c)

	req.Len(r.LiveConnections("alice"), 1)
	req.True(r.Online("alice"))
}

func TestMultiDevice(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()
	phone := &fakeConn{id: "phone"}
	laptop := &fakeConn{id: "laptop"}

	r.Register("alice", phone)
	r.Register("alice", laptop)
	req.Len(r.LiveConnections("alice"), 2)

	r.Unregister("alice", phone)
	conns := r.LiveConnections("alice")
	req.Len(conns, 1)
	req.Equal("laptop", conns[0].ID())
	req.True(r.Online("alice"))
}

func TestLastUnregisterMeansOffline(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()
	c := &fakeConn{id: "c1"}

	r.Register("alice", c)
	r.Unregister("alice", c)

	req.Empty(r.LiveConnections("alice"))
	req.False(r.Online("alice"))
}

func TestUnregisterUnknownIsNoop(t *testing.T) {
	r := NewRegistry()
	r.Unregister("ghost", &fakeConn{id: "c1"})
	require.False(t, r.Online("ghost"))
}

func TestSnapshotIsolation(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()
	c := &fakeConn{id: "c1"}
	r.Register("alice", c)

	snap := r.LiveConnections("alice")
	r.Unregister("alice", c)

	// The snapshot still holds the handle; using it after close is the
	// caller's no-op problem, not the registry's.
	req.Len(snap, 1)
	req.Empty(r.LiveConnections("alice"))
}
