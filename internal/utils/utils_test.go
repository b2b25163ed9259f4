package utils

import (
    "testing"
    "time"

    "github.com/golang-jwt/jwt/v5"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "golang.org/x/crypto/bcrypt"
)

const secret = "test-secret"

func TestAccessTokenRoundTrip(t *testing.T) {
    at, err := NewAccessToken(secret, "ops1", "STAFF", "China Eastern", 15)
    require.NoError(t, err)
    assert.WithinDuration(t, time.Now().Add(15*time.Minute), at.Exp, 5*time.Second)

    c, err := ParseAccessToken(secret, at.Token)
    require.NoError(t, err)
    assert.Equal(t, "ops1", c.Subject)
    assert.Equal(t, "STAFF", c.Role)
    assert.Equal(t, "China Eastern", c.Airline)
}

func TestParseAccessTokenRejects(t *testing.T) {
    good, err := NewAccessToken(secret, "ada@example.com", "CUSTOMER", "", 15)
    require.NoError(t, err)

    expired, err := NewAccessToken(secret, "ada@example.com", "CUSTOMER", "", -1)
    require.NoError(t, err)

    none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Role: "CUSTOMER",
        RegisteredClaims: jwt.RegisteredClaims{Subject: "x", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
    }).SignedString(jwt.UnsafeAllowNoneSignatureType)
    require.NoError(t, err)

    noRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
        RegisteredClaims: jwt.RegisteredClaims{Subject: "x", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
    }).SignedString([]byte(secret))
    require.NoError(t, err)

    cases := map[string]struct{ key, raw string }{
        "wrong secret": {"other", good.Token},
        "expired":      {secret, expired.Token},
        "alg none":     {secret, none},
        "no role":      {secret, noRole},
        "garbage":      {secret, "a.b.c"},
    }
    for name, tc := range cases {
        t.Run(name, func(t *testing.T) {
            _, err := ParseAccessToken(tc.key, tc.raw)
            assert.ErrorIs(t, err, ErrInvalidToken)
        })
    }
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

func TestPasswordHashing(t *testing.T) {
    h, err := HashPassword("secret1", bcrypt.MinCost)
    require.NoError(t, err)
    assert.True(t, VerifyPassword(h, "secret1"))
    assert.False(t, VerifyPassword(h, "secret2"))
    assert.False(t, VerifyPassword("", "secret1"))
}
