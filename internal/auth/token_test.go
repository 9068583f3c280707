package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestDecodeClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := signedToken(t, jwt.MapClaims{
		"sub":  "doc1",
		"name": "Dr. Acula",
		"exp":  exp.Unix(),
	})

	claims, err := DecodeClaims(token)
	require.NoError(t, err)
	assert.Equal(t, "doc1", claims.Subject)
	assert.Equal(t, "Dr. Acula", claims.Name)
	assert.Equal(t, exp.Unix(), claims.ExpiresAt.Unix())
	assert.False(t, claims.Expired())
}

func TestDecodeClaimsRequiresSubject(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"name": "nobody"})
	_, err := DecodeClaims(token)
	assert.Error(t, err)
}

func TestDecodeClaimsRejectsGarbage(t *testing.T) {
	_, err := DecodeClaims("not-a-token")
	assert.Error(t, err)
}

func TestExpired(t *testing.T) {
	past := signedToken(t, jwt.MapClaims{
		"sub": "doc1",
		"exp": time.Now().Add(-time.Minute).Unix(),
	})
	claims, err := DecodeClaims(past)
	require.NoError(t, err)
	assert.True(t, claims.Expired())

	// No exp claim: never expires client-side.
	forever := signedToken(t, jwt.MapClaims{"sub": "doc1"})
	claims, err = DecodeClaims(forever)
	require.NoError(t, err)
	assert.False(t, claims.Expired())
}
