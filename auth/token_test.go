package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeToken(t *testing.T, subject string, exp time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{Subject: subject}
	if !exp.IsZero() {
		claims.ExpiresAt = jwt.NewNumericDate(exp)
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestStaticSource(t *testing.T) {
	token, err := StaticSource("abc").Token()
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	_, err = StaticSource("").Token()
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestJWTSource_ClaimsPeek(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	raw := makeToken(t, "alice", exp)

	src, err := NewJWTSource(raw)
	require.NoError(t, err)

	assert.Equal(t, "alice", src.Username())

	got, ok := src.ExpiresAt()
	require.True(t, ok)
	assert.True(t, got.Equal(exp))

	token, err := src.Token()
	require.NoError(t, err)
	assert.Equal(t, raw, token)
}

func TestJWTSource_ExpiredTokenRefused(t *testing.T) {
	raw := makeToken(t, "alice", time.Now().Add(-time.Minute))

	src, err := NewJWTSource(raw)
	require.NoError(t, err, "parsing an expired token is fine, using it is not")

	_, err = src.Token()
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestJWTSource_NoExpiry(t *testing.T) {
	src, err := NewJWTSource(makeToken(t, "alice", time.Time{}))
	require.NoError(t, err)

	_, ok := src.ExpiresAt()
	assert.False(t, ok)

	_, err = src.Token()
	assert.NoError(t, err)
}

func TestJWTSource_Malformed(t *testing.T) {
	_, err := NewJWTSource("not a jwt")
	assert.Error(t, err)

	_, err = NewJWTSource("")
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestBearer(t *testing.T) {
	assert.Equal(t, "Bearer abc", Bearer("abc"))
}
