//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"github.com/google/uuid"

	"interchat/domain"
	"interchat/domain/event"
)

// EventSink is the delivery side of one live connection. Consume is
// fire-and-forget from the caller's point of view: a sink that cannot
// keep up drops events rather than stalling the broadcast.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// Registry tracks live connections grouped by room and answers the
// distinct-identity questions behind join/leave notifications.
type Registry interface {
	// Subscribe registers a connection and reports whether it is its
	// identity's only live connection in the room (count 0 -> 1).
	Subscribe(conn domain.Connection, sink EventSink) bool
	// Unsubscribe removes a connection and reports the identity it
	// carried plus whether no connection for that identity remains
	// (count -> 0, evaluated after removal). ok is false when the
	// connection was not registered.
	Unsubscribe(connID uuid.UUID, roomID domain.RoomID) (identity domain.Identity, last bool, ok bool)
	// Roster derives the distinct-identity view of a room.
	Roster(roomID domain.RoomID) []domain.Identity
	GetSinksForRoom(roomID domain.RoomID) []EventSink
	GetSinksForOthers(roomID domain.RoomID, exclude uuid.UUID) []EventSink
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker
// lifecycle events, avoiding the need for manual naming in the Worker
// interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
