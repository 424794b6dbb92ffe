package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_RoundTrip(t *testing.T) {
	ts := TokenService{Secret: []byte("s3cret"), Issuer: "lolapi", Duration: time.Hour}

	tok, exp, err := ts.Sign(&User{ID: "u1", Username: "alice", Email: "a@example.com", Role: RoleUser, TokenVersion: 2})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	claims, err := ts.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, RoleUser, claims.Role)
	assert.Equal(t, 2, claims.TokenVersion)
}

func TestTokenService_Rejects(t *testing.T) {
	ts := TokenService{Secret: []byte("s3cret"), Issuer: "lolapi", Duration: time.Hour}
	tok, _, err := ts.Sign(&User{ID: "u1", Role: RoleUser})
	require.NoError(t, err)

	tests := []struct {
		name  string
		ts    TokenService
		token string
	}{
		{name: "empty", ts: ts, token: ""},
		{name: "garbage", ts: ts, token: "not-a-jwt"},
		{name: "wrong secret", ts: TokenService{Secret: []byte("other"), Issuer: "lolapi"}, token: tok},
		{name: "wrong issuer", ts: TokenService{Secret: []byte("s3cret"), Issuer: "someone-else"}, token: tok},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.ts.Parse(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestTokenService_Expired(t *testing.T) {
	ts := TokenService{Secret: []byte("s3cret"), Duration: -time.Minute}
	tok, _, err := ts.Sign(&User{ID: "u1"})
	require.NoError(t, err)

	_, err = ts.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
