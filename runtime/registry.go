package runtime

import (
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"interchat/contract"
	"interchat/domain"
)

type session struct {
	conn domain.Connection
	sink contract.EventSink
}

// roomState is the live multiset of connections for one room. presence
// maps a collapse key to the number of live connections carrying it, so
// the 0<->1 transitions behind join/leave notifications are O(1) instead
// of a re-enumeration per event.
type roomState struct {
	sessions map[uuid.UUID]session
	presence map[string]int
}

// presenceKey collapses connections that belong to the same identity.
// Identities without a stable id are never collapsed: each of their
// connections counts as a distinct presence.
func presenceKey(conn domain.Connection) string {
	if conn.Identity.ID == "" {
		return "conn:" + conn.ID.String()
	}
	return "id:" + conn.Identity.ID
}

// Registry tracks live connections per room. It is the only shared
// mutable state in the relay and is owned by whoever instantiates it at
// process start; every component receives a handle instead of reaching
// for a global.
type Registry struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]*roomState
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[domain.RoomID]*roomState)}
}

// Subscribe registers a live connection in its room. The returned flag is
// true when this is the identity's only connection there, i.e. the
// presence count just transitioned 0 -> 1.
func (r *Registry) Subscribe(conn domain.Connection, sink contract.EventSink) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.rooms[conn.Room]
	if !ok {
		state = &roomState{
			sessions: make(map[uuid.UUID]session),
			presence: make(map[string]int),
		}
		r.rooms[conn.Room] = state
	}

	state.sessions[conn.ID] = session{conn: conn, sink: sink}
	key := presenceKey(conn)
	state.presence[key]++
	return state.presence[key] == 1
}

// Unsubscribe removes a connection from its room. It reports the identity
// the connection carried and whether that identity has no remaining live
// connection there, which is the trigger for a leave notification. Empty
// room entries are removed so the map does not accumulate dead rooms.
func (r *Registry) Unsubscribe(connID uuid.UUID, roomID domain.RoomID) (domain.Identity, bool, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.rooms[roomID]
	if !ok {
		return domain.Identity{}, false, false
	}
	sess, ok := state.sessions[connID]
	if !ok {
		return domain.Identity{}, false, false
	}

	delete(state.sessions, connID)
	key := presenceKey(sess.conn)
	state.presence[key]--
	last := state.presence[key] == 0
	if last {
		delete(state.presence, key)
	}
	if len(state.sessions) == 0 {
		delete(r.rooms, roomID)
	}
	return sess.conn.Identity, last, true
}

// Roster derives the distinct-identity view of a room by collapsing live
// connections that share an identity id. The surviving snapshot per id is
// whichever connection is enumerated last; the tie-break is arbitrary and
// callers must not rely on it.
func (r *Registry) Roster(roomID domain.RoomID) []domain.Identity {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.rooms[roomID]
	if !ok {
		return nil
	}

	seen := make(map[string]int, len(state.sessions))
	roster := make([]domain.Identity, 0, len(state.sessions))
	for _, sess := range state.sessions {
		key := presenceKey(sess.conn)
		if idx, dup := seen[key]; dup {
			roster[idx] = sess.conn.Identity
			continue
		}
		seen[key] = len(roster)
		roster = append(roster, sess.conn.Identity)
	}
	return roster
}

// GetSinksForRoom retrieves every active delivery channel for a room,
// including the caller's own.
func (r *Registry) GetSinksForRoom(roomID domain.RoomID) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.rooms[roomID]
	if !ok {
		return nil
	}
	return lo.MapToSlice(state.sessions, func(_ uuid.UUID, s session) contract.EventSink {
		return s.sink
	})
}

// GetSinksForOthers retrieves every active delivery channel for a room
// except the excluded connection's own.
func (r *Registry) GetSinksForOthers(roomID domain.RoomID, exclude uuid.UUID) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.rooms[roomID]
	if !ok {
		return nil
	}
	var sinks []contract.EventSink
	for id, sess := range state.sessions {
		if id == exclude {
			continue
		}
		sinks = append(sinks, sess.sink)
	}
	return sinks
}
