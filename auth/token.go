package auth

import (
	"strings"

	"interchat/errors"
)

// Token is a validated three-segment bearer credential. Only the shape is
// checked locally; whether the credential is genuine is the identity
// service's business.
type Token struct {
	// UserRef is the first segment, used to parameterize the verifier
	// endpoint.
	UserRef string
	// Raw is the full credential, forwarded as the bearer header.
	Raw string
}

// ParseToken checks the credential shape: exactly three dot-delimited
// segments with a non-empty first segment. No network is involved, so a
// malformed credential is rejected before any verifier call.
func ParseToken(raw string) (Token, error) {
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return Token{}, errors.ErrMalformedToken
	}
	if parts[0] == "" {
		return Token{}, errors.ErrMalformedToken
	}
	return Token{UserRef: parts[0], Raw: raw}, nil
}
