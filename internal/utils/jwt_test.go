package utils

import (
    "testing"
    "time"

    "github.com/golang-jwt/jwt/v5"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestNewAccessTokenClaims(t *testing.T) {
    at, err := NewAccessToken("test-secret", 42, "ADMIN", 15)
    require.NoError(t, err)
    assert.WithinDuration(t, time.Now().UTC().Add(15*time.Minute), at.Exp, 5*time.Second)

    tok, err := jwt.Parse(at.Token, func(tok *jwt.Token) (interface{}, error) {
        return []byte("test-secret"), nil
    })
    require.NoError(t, err)
    require.True(t, tok.Valid)

    claims, ok := tok.Claims.(jwt.MapClaims)
    require.True(t, ok)
    assert.Equal(t, float64(42), claims["sub"])
    assert.Equal(t, "ADMIN", claims["role"])
}

func TestNewAccessTokenRejectsWrongSecret(t *testing.T) {
    at, err := NewAccessToken("right", 1, "EMPLOYEE", 5)
    require.NoError(t, err)

    _, err = jwt.Parse(at.Token, func(tok *jwt.Token) (interface{}, error) {
        return []byte("wrong"), nil
    })
    assert.Error(t, err)
}

func TestRefreshTokenHashStable(t *testing.T) {
    rt, err := NewRefreshToken(7)
    require.NoError(t, err)
    assert.Len(t, rt.Raw, 96)

    // Same raw value always hashes to the same digest; the digest never
    // equals the raw token.
    assert.Equal(t, HashRefreshRaw(rt.Raw), HashRefreshRaw(rt.Raw))
    assert.NotEqual(t, rt.Raw, HashRefreshRaw(rt.Raw))

    other, err := NewRefreshToken(7)
    require.NoError(t, err)
    assert.NotEqual(t, HashRefreshRaw(rt.Raw), HashRefreshRaw(other.Raw))
}

func TestHashAndVerifyPassword(t *testing.T) {
    hash, err := HashPassword("s3cret", 4)
    require.NoError(t, err)
    assert.True(t, VerifyPassword(hash, "s3cret"))
    assert.False(t, VerifyPassword(hash, "wrong"))
}
