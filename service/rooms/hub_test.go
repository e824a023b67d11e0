package rooms

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type emitRec struct {
	Event   string
	Payload any
}

type fakeConn struct {
	mu    sync.Mutex
	id    string
	emits []emitRec
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Emit(event string, payload any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.emits = append(c.emits, emitRec{Event: event, Payload: payload})
	return nil
}

func (c *fakeConn) received() []emitRec {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]emitRec, len(c.emits))
	copy(out, c.emits)
	return out
}

func TestJoinIsIdempotent(t *testing.T) {
	h := NewHub()
	c1 := &fakeConn{id: "c1"}
	h.Register(c1)

	h.Join("c1", "chat-room:42")
	h.Join("c1", "chat-room:42")
	require.Equal(t, 1, h.RoomSize("chat-room:42"))

	h.SendToRoom("chat-room:42", "chat-message", "hello", "")
	require.Len(t, c1.received(), 1, "double join must not double deliveries")
}

func TestSendToRoomExcludesSender(t *testing.T) {
	h := NewHub()
	c1 := &fakeConn{id: "c1"}
	c2 := &fakeConn{id: "c2"}
	h.Register(c1)
	h.Register(c2)
	h.Join("c1", "chat-room:42")
	h.Join("c2", "chat-room:42")

	h.SendToRoom("chat-room:42", "chat-message", "hi", "c1")

	assert.Empty(t, c1.received())
	require.Len(t, c2.received(), 1)
	assert.Equal(t, "chat-message", c2.received()[0].Event)
}

func TestSendToEmptyRoomIsNoop(t *testing.T) {
	h := NewHub()
	h.SendToRoom("chat-room:nobody", "chat-message", "hi", "")
}

func TestJoinUnknownConnIsIgnored(t *testing.T) {
	h := NewHub()
	h.Join("ghost", "chat-room:42")
	assert.Equal(t, 0, h.RoomSize("chat-room:42"))
}

func TestSendSkipsAndPrunesDeadMembers(t *testing.T) {
	h := NewHub()
	c1 := &fakeConn{id: "c1"}
	c2 := &fakeConn{id: "c2"}
	h.Register(c1)
	h.Register(c2)
	h.Join("c1", "chat-room:42")
	h.Join("c2", "chat-room:42")

	h.Unregister("c1")
	require.Equal(t, 2, h.RoomSize("chat-room:42"), "membership decays lazily")

	h.SendToRoom("chat-room:42", "chat-message", "hi", "")
	assert.Empty(t, c1.received(), "closed connection must be skipped")
	require.Len(t, c2.received(), 1)
	assert.Equal(t, 1, h.RoomSize("chat-room:42"), "stale member pruned on send")
}

func TestBroadcastAllExcludes(t *testing.T) {
	h := NewHub()
	c1 := &fakeConn{id: "c1"}
	c2 := &fakeConn{id: "c2"}
	c3 := &fakeConn{id: "c3"}
	h.Register(c1)
	h.Register(c2)
	h.Register(c3)

	h.BroadcastAll("user-online", map[string]string{"userId": "u1"}, "c1")

	assert.Empty(t, c1.received())
	assert.Len(t, c2.received(), 1)
	assert.Len(t, c3.received(), 1)
}

func TestRoomNames(t *testing.T) {
	assert.Equal(t, "user-room:u1", UserRoom("u1"))
	assert.Equal(t, "chat-room:c42", ChatRoom("c42"))
}
