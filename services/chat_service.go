//go:generate go run go.uber.org/mock/mockgen -source=chat_service.go -destination=../mocks/mock_chat_service.go -package=mocks
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"interchat/contract"
	"interchat/domain"
	"interchat/domain/event"
)

// System announcements, kept in the relay's original language.
const (
	welcomeText = "Te has conectado al interchat."
	joinedText  = "%s se conecto al interchat."
	leftText    = "%s se desconecto del interchat."
)

type IChatService interface {
	Join(ctx context.Context, conn domain.Connection, sink contract.EventSink)
	Leave(ctx context.Context, connID uuid.UUID, roomID domain.RoomID)
	Post(ctx context.Context, conn domain.Connection, content string)
}

// ChatService drives the per-connection lifecycle and relays messages.
// Transitions are one-shot: a connection that fails admission never
// re-enters the state machine, and there are no retries anywhere.
type ChatService struct {
	log      *slog.Logger
	registry contract.Registry
}

func NewChatService(log *slog.Logger, registry contract.Registry) *ChatService {
	return &ChatService{log: log, registry: registry}
}

// Join admits an authenticated connection into its room. The newcomer
// receives the (empty) backlog, the distinct roster including itself and
// a personal welcome. Peers are notified only when this is the identity's
// first live connection in the room: they get a MemberJoined event plus a
// join announcement, never the personal welcome.
func (s *ChatService) Join(ctx context.Context, conn domain.Connection, sink contract.EventSink) {
	first := s.registry.Subscribe(conn, sink)

	s.deliver(ctx, sink, event.Backlog{Room: conn.Room, Messages: []domain.Message{}})
	s.deliver(ctx, sink, event.Roster{Room: conn.Room, Users: s.registry.Roster(conn.Room)})
	s.deliver(ctx, sink, event.MessageCreated{
		Room:    conn.Room,
		Message: domain.NewSystemMessage(welcomeText),
	})

	if !first {
		s.log.Debug("identity already present, skipping join broadcast",
			"identity_id", conn.Identity.ID, "room", conn.Room)
		return
	}

	announce := domain.NewSystemMessage(fmt.Sprintf(joinedText, conn.Identity.Username))
	for _, peer := range s.registry.GetSinksForOthers(conn.Room, conn.ID) {
		s.deliver(ctx, peer, event.MemberJoined{Room: conn.Room, User: conn.Identity})
		s.deliver(ctx, peer, event.MessageCreated{Room: conn.Room, Message: announce})
	}
	s.log.Info("member joined", "identity_id", conn.Identity.ID,
		"username", conn.Identity.Username, "room", conn.Room)
}

// Leave removes a connection from its room. The remaining members are
// notified only when the identity has no live connection left there.
func (s *ChatService) Leave(ctx context.Context, connID uuid.UUID, roomID domain.RoomID) {
	identity, last, ok := s.registry.Unsubscribe(connID, roomID)
	if !ok || !last {
		return
	}

	farewell := domain.NewSystemMessage(fmt.Sprintf(leftText, identity.Username))
	for _, peer := range s.registry.GetSinksForRoom(roomID) {
		s.deliver(ctx, peer, event.MemberLeft{Room: roomID, User: identity})
		s.deliver(ctx, peer, event.MessageCreated{Room: roomID, Message: farewell})
	}
	s.log.Info("member left", "identity_id", identity.ID,
		"username", identity.Username, "room", roomID)
}

// Post relays an inbound payload as a canonical message to every
// connection in the sender's room, the sender included. Content is
// sanitized by the Message constructor and never rejected.
func (s *ChatService) Post(ctx context.Context, conn domain.Connection, content string) {
	msg := domain.NewMessage(conn.Identity, content)
	evt := event.MessageCreated{Room: conn.Room, Message: msg}
	for _, target := range s.registry.GetSinksForRoom(conn.Room) {
		s.deliver(ctx, target, evt)
	}
}

func (s *ChatService) deliver(ctx context.Context, sink contract.EventSink, e event.DomainEvent) {
	if err := sink.Consume(ctx, e); err != nil {
		// Best effort only, a lost event is not an error of the relay
		s.log.Debug("event delivery failed", "room", e.RoomID(), "error", err)
	}
}
