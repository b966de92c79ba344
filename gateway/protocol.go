package gateway

import (
	"encoding/json"
	"fmt"

	"github.com/samber/lo"

	"interchat/domain"
	"interchat/domain/event"
)

// Wire event names, shared by server and clients.
const (
	EventMessagesList  = "MESSAGES_LIST"
	EventMembersList   = "MEMBERS_LIST"
	EventMessageCreate = "MESSAGE_CREATE"
	EventMemberUpdate  = "MEMBER_UPDATE"
)

const (
	ActionConnect    = "connect"
	ActionDisconnect = "disconnect"
)

// Envelope is the framing of every message on the persistent channel.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type UserPayload struct {
	ID       string `json:"id,omitempty"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
	System   bool   `json:"system"`
}

type MessagePayload struct {
	ID      string      `json:"id"`
	Content string      `json:"content"`
	Author  UserPayload `json:"author"`
	// Timestamp is the creation instant in milliseconds since epoch.
	Timestamp int64 `json:"timestamp"`
}

type MemberUpdatePayload struct {
	Action string      `json:"action"`
	User   UserPayload `json:"user"`
}

// CreateMessagePayload is the inbound MESSAGE_CREATE body.
type CreateMessagePayload struct {
	Content string `json:"content"`
}

func toUserPayload(identity domain.Identity) UserPayload {
	return UserPayload{
		ID:       identity.ID,
		Username: identity.Username,
		Avatar:   identity.AvatarURL,
		System:   identity.System,
	}
}

func toMessagePayload(m domain.Message) MessagePayload {
	return MessagePayload{
		ID:        m.ID.String(),
		Content:   m.Content,
		Author:    toUserPayload(m.Author),
		Timestamp: m.At.UnixMilli(),
	}
}

// Encode turns a domain event into its wire frame.
func Encode(e event.DomainEvent) ([]byte, error) {
	var (
		name    string
		payload any
	)

	switch evt := e.(type) {
	case event.Backlog:
		name = EventMessagesList
		payload = lo.Map(evt.Messages, func(m domain.Message, _ int) MessagePayload {
			return toMessagePayload(m)
		})
	case event.Roster:
		name = EventMembersList
		payload = lo.Map(evt.Users, func(u domain.Identity, _ int) UserPayload {
			return toUserPayload(u)
		})
	case event.MessageCreated:
		name = EventMessageCreate
		payload = toMessagePayload(evt.Message)
	case event.MemberJoined:
		name = EventMemberUpdate
		payload = MemberUpdatePayload{Action: ActionConnect, User: toUserPayload(evt.User)}
	case event.MemberLeft:
		name = EventMemberUpdate
		payload = MemberUpdatePayload{Action: ActionDisconnect, User: toUserPayload(evt.User)}
	default:
		return nil, fmt.Errorf("unsupported event type %T", e)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: name, Data: data})
}
