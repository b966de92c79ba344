// Package domain contains core concepts of the chat relay.
// This file defines Identity value objects and their defaulting rules.
// Identities are immutable once constructed.
package domain

// Sentinel values substituted at construction so that downstream
// consumers never have to branch on absent fields.
const (
	DefaultUsername  = "Desconocido"
	DefaultAvatarURL = "https://cdn.chatglobal.ml/assets/error.png"

	systemUsername  = "System"
	systemAvatarURL = "https://cdn.chatglobal.ml/assets/logo.png"
	systemID        = "system"
)

// Identity is an immutable snapshot of a verified user.
// Presence collapsing compares identities by ID; an empty ID marks a
// degraded identity that is never collapsed with any other connection.
type Identity struct {
	ID        string
	Username  string
	AvatarURL string
	System    bool
}

// NewIdentity applies the defaulting rules exactly once, at construction.
func NewIdentity(id, username, avatarURL string) Identity {
	if username == "" {
		username = DefaultUsername
	}
	if avatarURL == "" {
		avatarURL = DefaultAvatarURL
	}
	return Identity{ID: id, Username: username, AvatarURL: avatarURL}
}

// SystemIdentity returns the fixed synthetic author of system messages.
func SystemIdentity() Identity {
	return Identity{
		ID:        systemID,
		Username:  systemUsername,
		AvatarURL: systemAvatarURL,
		System:    true,
	}
}
