package auth

import (
	"context"

	"github.com/go-playground/validator/v10"

	"interchat/domain"
	"interchat/errors"
)

var validate = validator.New()

// Handshake is the out-of-band auth payload a client sends as the first
// frame of a new connection. It is parsed into this tagged record once;
// nothing downstream ever reaches into a free-form payload.
type Handshake struct {
	Token     string `json:"token" validate:"required"`
	Interchat string `json:"interchat" validate:"required"`
}

// Verifier checks an opaque bearer credential with the identity service
// and returns the verified profile.
type Verifier interface {
	Verify(ctx context.Context, token Token) (domain.Identity, error)
}

// Authenticator gates every new connection exactly once, before any room
// or message logic runs. It either admits the connection by returning the
// verified identity and resolved room, or rejects it; no partial state is
// left behind on failure.
type Authenticator struct {
	verifier Verifier
	catalog  domain.Catalog
}

func NewAuthenticator(verifier Verifier, catalog domain.Catalog) *Authenticator {
	return &Authenticator{verifier: verifier, catalog: catalog}
}

// Authenticate runs the admission gate:
//  1. the handshake must carry a credential,
//  2. the credential must have a valid shape (checked before any network
//     call),
//  3. the identity service must accept it,
//  4. the room selector must resolve against the static catalog.
func (a *Authenticator) Authenticate(ctx context.Context, hs Handshake) (domain.Identity, domain.Room, error) {
	// The steps are validated one at a time so each fault maps to its
	// own rejection even when several fields are bad at once: a
	// malformed credential is reported as such regardless of the room
	// selector.
	if err := validate.StructPartial(hs, "Token"); err != nil {
		return domain.Identity{}, domain.Room{}, errors.ErrAuthentication
	}

	token, err := ParseToken(hs.Token)
	if err != nil {
		return domain.Identity{}, domain.Room{}, err
	}

	identity, err := a.verifier.Verify(ctx, token)
	if err != nil {
		// Rejection, outage and transport failure are indistinguishable
		// on purpose; none of them is retried.
		return domain.Identity{}, domain.Room{}, errors.ErrAuthentication
	}

	if err := validate.StructPartial(hs, "Interchat"); err != nil {
		return domain.Identity{}, domain.Room{}, errors.ErrInvalidRoom
	}
	room, ok := a.catalog.Resolve(domain.RoomID(hs.Interchat))
	if !ok {
		return domain.Identity{}, domain.Room{}, errors.ErrInvalidRoom
	}
	return identity, room, nil
}
