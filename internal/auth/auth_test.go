package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)
	assert.False(t, IsLegacyHash(hash))

	assert.True(t, CheckPassword("correct horse", hash))
	assert.False(t, CheckPassword("wrong", hash))

	_, err = HashPassword(string(make([]byte, 73)))
	assert.Error(t, err)
}

func TestCheckPassword_Legacy(t *testing.T) {
	salt := "a1b2c3"
	sum := sha256.Sum256([]byte("hunter2" + salt))
	stored := salt + ":" + hex.EncodeToString(sum[:])

	assert.True(t, IsLegacyHash(stored))
	assert.True(t, CheckPassword("hunter2", stored))
	assert.False(t, CheckPassword("hunter3", stored))

	assert.False(t, IsLegacyHash("salt:short"))
	assert.False(t, CheckPassword("hunter2", "garbage"))
}

func TestTokenService(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)

	token, err := svc.Issue("alex", "admin")
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "alex", claims.Username)
	assert.Equal(t, "admin", claims.Access)

	other := NewTokenService("other", time.Hour)
	_, err = other.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_Expired(t *testing.T) {
	svc := NewTokenService("secret", time.Minute)
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, err := svc.Issue("alex", "")
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_RejectsOtherAlgorithms(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)
	token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Username: "alex"})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.Validate(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUsernameContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, Username(ctx))
	assert.Equal(t, "alex", Username(WithUsername(ctx, "alex")))
}
