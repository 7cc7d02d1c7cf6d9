package utils

import (
	"bytes"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken("s3cret", 42, "MANAGER", 15)
	require.NoError(t, err)

	claims, err := ParseAccessToken("s3cret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, AccessClaims{StaffID: 42, Role: "MANAGER"}, claims)

	_, err = ParseAccessToken("other", tok.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseAccessToken_Rejects(t *testing.T) {
	expired, err := NewAccessToken("k", 1, "STAFF", -1)
	require.NoError(t, err)
	_, err = ParseAccessToken("k", expired.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "1", "role": "STAFF"}).SignedString([]byte("k"))
	_, err = ParseAccessToken("k", noExp)
	assert.ErrorIs(t, err, ErrInvalidToken)

	hs512, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{"sub": "1", "role": "STAFF", "exp": 9999999999}).SignedString([]byte("k"))
	_, err = ParseAccessToken("k", hs512)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshToken(t *testing.T) {
	a, err := NewRefreshToken(7)
	require.NoError(t, err)
	b, err := NewRefreshToken(7)
	require.NoError(t, err)
	assert.Len(t, a.Raw, 96)
	assert.NotEqual(t, a.Raw, b.Raw)
	assert.Len(t, HashRefreshRaw(a.Raw), 64)
	assert.Equal(t, HashRefreshRaw(a.Raw), HashRefreshRaw(a.Raw))
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("pa55word", 4)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "pa55word"))
	assert.False(t, VerifyPassword(hash, "nope"))
}

func TestBookingQRCode(t *testing.T) {
	png, err := BookingQRCode("BELLAVISTA-1", 128)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}
