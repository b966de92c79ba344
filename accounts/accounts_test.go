package accounts

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHashAndCompare(t *testing.T) {
	req := require.New(t)
	password := "MonMotDePasseTr0pSûr!"

	hash, err := HashPassword(password)
	req.NoError(err)
	req.True(strings.HasPrefix(hash, "$argon2id$"))

	match, err := ComparePassword(password, hash)
	req.NoError(err)
	req.True(match)

	match, err = ComparePassword("WrongPassword1!", hash)
	req.NoError(err)
	req.False(match)
}

func TestTokenIssueAndValidate(t *testing.T) {
	req := require.New(t)
	issuer := NewTokenIssuer("test_secret_for_unit_tests_only", time.Hour)

	token, err := issuer.Issue("u1", "Bob")
	req.NoError(err)

	// A compact JWT is exactly the three-segment shape the gateway
	// checks before calling authorize.
	req.Equal(2, strings.Count(token, "."))
	req.NotEmpty(strings.Split(token, ".")[0])

	claims, err := issuer.Validate(token)
	req.NoError(err)
	req.Equal("u1", claims.UserID)
	req.Equal("Bob", claims.Username)
}

func TestTokenValidate_WrongSecret(t *testing.T) {
	req := require.New(t)
	issuer := NewTokenIssuer("secret_a_secret_a_secret_a", time.Hour)
	other := NewTokenIssuer("secret_b_secret_b_secret_b", time.Hour)

	token, err := issuer.Issue("u1", "Bob")
	req.NoError(err)

	_, err = other.Validate(token)
	req.Error(err)
}

func TestTokenValidate_Expired(t *testing.T) {
	req := require.New(t)
	issuer := NewTokenIssuer("test_secret_for_unit_tests_only", -time.Minute)

	token, err := issuer.Issue("u1", "Bob")
	req.NoError(err)

	_, err = issuer.Validate(token)
	req.Error(err)
}

func TestRegistrationValidation(t *testing.T) {
	req := require.New(t)
	tests := []struct {
		name    string
		req     RegisterRequest
		wantErr bool
	}{
		{"Valid request", RegisterRequest{"test@example.com", "bob", "ComplexPass123!", ""}, false},
		{"Invalid email", RegisterRequest{"notanemail", "bob", "ComplexPass123!", ""}, true},
		{"Password too short", RegisterRequest{"test@example.com", "bob", "Short1!", ""}, true},
		{"Missing digit", RegisterRequest{"test@example.com", "bob", "NoDigitPassword!", ""}, true},
		{"Missing special char", RegisterRequest{"test@example.com", "bob", "NoSpecialChar123", ""}, true},
		{"Missing uppercase", RegisterRequest{"test@example.com", "bob", "nouppercase123!!", ""}, true},
		{"Username missing", RegisterRequest{"test@example.com", "", "ComplexPass123!", ""}, true},
		{"Password too long", RegisterRequest{"test@example.com", "bob", strings.Repeat("a", 73), ""}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRegister(tt.req)
			if tt.wantErr {
				req.Error(err)
			} else {
				req.NoError(err)
			}
		})
	}
}
