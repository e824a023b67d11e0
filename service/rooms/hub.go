package rooms

import (
	"sync"
)

// Conn is one live transport session as the hub sees it. Emit is
// fire-and-forget: delivery failure on a single connection never fails the
// fan-out.
type Conn interface {
	ID() string
	Emit(event string, payload any) error
}

// Hub maps room names to the set of subscribed connections, plus a registry
// of every live connection for process-wide broadcasts. Rooms are created
// implicitly on first join and never explicitly destroyed; membership of a
// closed connection decays lazily because sends skip (and prune) members
// that are no longer registered.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]Conn            // connID -> conn
	rooms map[string]map[string]Conn // room -> connID -> conn
}

func NewHub() *Hub {
	return &Hub{
		conns: make(map[string]Conn),
		rooms: make(map[string]map[string]Conn),
	}
}

// Register adds a live connection to the broadcast registry.
func (h *Hub) Register(c Conn) {
	if c == nil || c.ID() == "" {
		return
	}
	h.mu.Lock()
	h.conns[c.ID()] = c
	h.mu.Unlock()
}

// Unregister drops the connection from the registry. Room entries are left
// in place; SendToRoom prunes them the next time the room is addressed.
func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	delete(h.conns, connID)
	h.mu.Unlock()
}

// Join subscribes the connection to a room; idempotent. A connection that
// was never registered (or is already gone) is ignored.
func (h *Hub) Join(connID, room string) {
	if connID == "" || room == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.conns[connID]
	if !ok {
		return
	}
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[string]Conn)
	}
	h.rooms[room][connID] = c
}

// SendToRoom delivers payload under event to every connection currently in
// the room except excludeID. An empty or unknown room is a no-op, not an
// error. No acknowledgment or delivery guarantee is provided.
func (h *Hub) SendToRoom(room, event string, payload any, excludeID string) {
	h.mu.RLock()
	members := h.rooms[room]
	targets := make([]Conn, 0, len(members))
	var stale []string
	for id, c := range members {
		if id == excludeID {
			continue
		}
		if _, live := h.conns[id]; !live {
			stale = append(stale, id)
			continue
		}
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	if len(stale) > 0 {
		h.mu.Lock()
		if members := h.rooms[room]; members != nil {
			for _, id := range stale {
				delete(members, id)
			}
		}
		h.mu.Unlock()
	}

	for _, c := range targets {
		_ = c.Emit(event, payload)
	}
}

// BroadcastAll delivers payload under event to every registered connection
// except excludeID. Used for the edge-triggered presence transitions.
func (h *Hub) BroadcastAll(event string, payload any, excludeID string) {
	h.mu.RLock()
	targets := make([]Conn, 0, len(h.conns))
	for id, c := range h.conns {
		if id == excludeID {
			continue
		}
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		_ = c.Emit(event, payload)
	}
}

// RoomSize reports current membership count (stale entries included until
// the next send prunes them). Mostly useful in tests and diagnostics.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
