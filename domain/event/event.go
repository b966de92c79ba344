package event

import "interchat/domain"

// DomainEvent is anything the relay can deliver to a connected client.
// Events are scoped to a room; broadcast never crosses that fence.
type DomainEvent interface {
	RoomID() domain.RoomID
}

// MessageCreated carries a user or system message into the room.
type MessageCreated struct {
	Room    domain.RoomID
	Message domain.Message
}

func (e MessageCreated) RoomID() domain.RoomID { return e.Room }

// MemberJoined fires when an identity gains its first live connection in
// the room.
type MemberJoined struct {
	Room domain.RoomID
	User domain.Identity
}

func (e MemberJoined) RoomID() domain.RoomID { return e.Room }

// MemberLeft fires when an identity loses its last live connection in the
// room.
type MemberLeft struct {
	Room domain.RoomID
	User domain.Identity
}

func (e MemberLeft) RoomID() domain.RoomID { return e.Room }

// Backlog is the message-history snapshot sent to a connection on join.
// History replay is out of scope, so the snapshot is always empty; the
// event exists so clients get a deterministic first frame.
type Backlog struct {
	Room     domain.RoomID
	Messages []domain.Message
}

func (e Backlog) RoomID() domain.RoomID { return e.Room }

// Roster is the distinct-identity view of the room sent to a connection
// on join. It includes the joining identity itself.
type Roster struct {
	Room  domain.RoomID
	Users []domain.Identity
}

func (e Roster) RoomID() domain.RoomID { return e.Room }
