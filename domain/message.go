// Package domain contains core concepts of the chat relay.
// This file defines Message events and related rules.
// Messages are immutable and sanitized by the domain.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NoContent replaces message bodies that are empty after trimming.
const NoContent = "Sin contenido."

// MessageKind discriminates the message variant explicitly.
type MessageKind string

const (
	KindUser   MessageKind = "user"
	KindSystem MessageKind = "system"
)

// Message represents an immutable chat event. The Author field is a
// snapshot copy of the sending identity, not a live reference.
type Message struct {
	ID      uuid.UUID
	Kind    MessageKind
	Content string
	Author  Identity
	At      time.Time
}

// NewMessage builds a canonical user message. Content is trimmed and an
// empty result is substituted with the NoContent sentinel, so a
// constructed message never carries an empty body.
func NewMessage(author Identity, content string) Message {
	content = strings.TrimSpace(content)
	if content == "" {
		content = NoContent
	}
	return Message{
		ID:      newMessageID(),
		Kind:    KindUser,
		Content: content,
		Author:  author,
		At:      time.Now().UTC(),
	}
}

// NewSystemMessage builds a server announcement authored by the fixed
// system identity.
func NewSystemMessage(content string) Message {
	m := NewMessage(SystemIdentity(), content)
	m.Kind = KindSystem
	return m
}

// newMessageID returns a time-ordered unique identifier. UUIDv7 keeps ids
// sortable by creation instant while the random tail keeps them
// collision-free within the same millisecond.
func newMessageID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		// rand failure, fall back to a purely random id
		return uuid.New()
	}
	return id
}
