package auth

import (
	"testing"
	"time"

	"github.com/fjod/go_shop/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManager_Validation(t *testing.T) {
	_, err := NewManager("", time.Hour)
	assert.Error(t, err)

	_, err = NewManager("secret", 0)
	assert.Error(t, err)
}

func TestIssueAndVerify(t *testing.T) {
	m, err := NewManager("secret", time.Hour)
	require.NoError(t, err)

	token, err := m.Issue("alice@example.com")
	require.NoError(t, err)

	email, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", email)
}

func TestVerify_Failures(t *testing.T) {
	m, err := NewManager("secret", time.Hour)
	require.NoError(t, err)

	other, err := NewManager("other-secret", time.Hour)
	require.NoError(t, err)
	foreign, err := other.Issue("alice@example.com")
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Email: "alice@example.com"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "missing", token: "", wantErr: ErrMissingToken},
		{name: "malformed", token: "not-a-jwt", wantErr: ErrInvalidToken},
		{name: "wrong secret", token: foreign, wantErr: ErrInvalidToken},
		{name: "alg none", token: noneToken, wantErr: ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Verify(tt.token)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
		})
	}
}

func TestVerify_Expired(t *testing.T) {
	m, err := NewManager("secret", time.Minute)
	require.NoError(t, err)

	issuedAt := time.Now().Add(-time.Hour)
	m.now = func() time.Time { return issuedAt }
	token, err := m.Issue("alice@example.com")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Verify(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)

	assert.NotEqual(t, "correct horse", hash)
	assert.True(t, CheckPassword(hash, "correct horse"))
	assert.False(t, CheckPassword(hash, "battery staple"))
	assert.False(t, CheckPassword("not-a-hash", "correct horse"))
}
