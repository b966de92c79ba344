package domain

import "github.com/google/uuid"

// Connection is the ephemeral context attached to one live transport
// session. Identity and Room are set once at admission and never change;
// the handle is never reused after disconnect.
type Connection struct {
	ID       uuid.UUID
	Identity Identity
	Room     RoomID
}

func NewConnection(identity Identity, room RoomID) Connection {
	return Connection{ID: uuid.New(), Identity: identity, Room: room}
}
