package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestNewMessage_TrimsAndSubstitutesContent(t *testing.T) {
	author := NewIdentity("u1", "Bob", "")

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"Plain content kept", "hola", "hola"},
		{"Surrounding spaces trimmed", "  hi  ", "hi"},
		{"Empty content replaced", "", NoContent},
		{"Whitespace only replaced", "   ", NoContent},
		{"Tabs and newlines replaced", " \t\n ", NoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := NewMessage(author, tt.content)
			require.Equal(t, tt.want, msg.Content)
			require.NotEmpty(t, msg.Content)
		})
	}
}

func TestNewMessage_SnapshotsAuthor(t *testing.T) {
	req := require.New(t)
	author := NewIdentity("u1", "Bob", "")

	msg := NewMessage(author, "hola")

	req.Equal(KindUser, msg.Kind)
	req.Equal("u1", msg.Author.ID)
	req.Equal("Bob", msg.Author.Username)
	req.Equal(DefaultAvatarURL, msg.Author.AvatarURL)
	req.False(msg.Author.System)
	req.False(msg.At.IsZero())
}

func TestNewSystemMessage_UsesFixedAuthor(t *testing.T) {
	req := require.New(t)

	msg := NewSystemMessage("Te has conectado al interchat.")

	req.Equal(KindSystem, msg.Kind)
	req.True(msg.Author.System)
	req.Equal("System", msg.Author.Username)
	req.Equal("https://cdn.chatglobal.ml/assets/logo.png", msg.Author.AvatarURL)
}

func TestNewMessage_IDsAreDistinctAndOrdered(t *testing.T) {
	req := require.New(t)
	author := NewIdentity("u1", "Bob", "")

	// Rapid construction, most of these land in the same millisecond.
	const n = 10000
	seen := make(map[uuid.UUID]struct{}, n)
	for i := 0; i < n; i++ {
		msg := NewMessage(author, "x")
		_, dup := seen[msg.ID]
		req.False(dup, "duplicate message id after %d constructions", i)
		seen[msg.ID] = struct{}{}
	}
}
