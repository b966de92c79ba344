package auth

import (
	"testing"

	"github.com/stretchr/testify/require"

	"interchat/errors"
)

func TestParseToken(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
		userRef string
	}{
		{"Valid three segments", "u1.a.b", false, "u1"},
		{"No separator", "u1ab", true, ""},
		{"Two segments", "u1.ab", true, ""},
		{"Four segments", "u1.a.b.c", true, ""},
		{"Empty first segment", ".a.b", true, ""},
		{"Empty string", "", true, ""},
		{"Only dots", "..", true, ""},
		{"Empty middle segments allowed in principle", "u1..", false, "u1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			token, err := ParseToken(tt.raw)
			if tt.wantErr {
				req.ErrorIs(err, errors.ErrMalformedToken)
				return
			}
			req.NoError(err)
			req.Equal(tt.userRef, token.UserRef)
			req.Equal(tt.raw, token.Raw)
		})
	}
}
