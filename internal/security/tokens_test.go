package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTokenProvider_IssueThenValidate(t *testing.T) {
	p, err := NewTestTokenProvider()
	require.NoError(t, err)

	token, exp, err := p.Issue(42)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.True(t, exp.After(time.Now()))

	userID, err := p.Validate(token)
	require.NoError(t, err)
	require.Equal(t, int64(42), userID)
}

func TestTokenProvider_ValidateRejects(t *testing.T) {
	p, err := NewTestTokenProvider()
	require.NoError(t, err)
	token, _, err := p.Issue(42)
	require.NoError(t, err)

	otherAudience := NewTokenProvider(p.privateKey, p.publicKey, "test-issuer", "someone-else", time.Minute)
	otherIssuer := NewTokenProvider(p.privateKey, p.publicKey, "another-issuer", "test-audience", time.Minute)
	expired := NewTokenProvider(p.privateKey, p.publicKey, "test-issuer", "test-audience", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(time.Hour) }

	tests := []struct {
		name  string
		p     *TokenProvider
		token string
	}{
		{"garbage", p, "invalid-token"},
		{"wrong audience", otherAudience, token},
		{"wrong issuer", otherIssuer, token},
		{"expired", expired, token},
		{"tampered", p, token + "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.p.Validate(tt.token)
			require.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestTokenProvider_VerifyOnlyCannotIssue(t *testing.T) {
	pub, err := ParsePublicKey(testPublicKeyPEM)
	require.NoError(t, err)
	p := NewTokenProvider(nil, pub, "test-issuer", "test-audience", time.Minute)

	_, _, err = p.Issue(1)
	require.ErrorIs(t, err, ErrCannotSign)
}
