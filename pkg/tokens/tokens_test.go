package tokens

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-jwt-secret")

func TestAccessClaimsFromToken(t *testing.T) {
	t.Parallel()

	exp := time.Now().Add(time.Minute)
	tok, err := Sign(AccessClaims{
		Role:             "staff",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "12", ExpiresAt: jwt.NewNumericDate(exp)},
	}, secret)
	require.NoError(t, err)

	claims, err := AccessClaimsFromToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, "staff", claims.Role)
	assert.Equal(t, "12", claims.Subject)

	_, err = AccessClaimsFromToken(tok, []byte("other"))
	assert.Error(t, err)
}

func TestAccessClaimsFromToken_Expired(t *testing.T) {
	t.Parallel()

	tok, err := Sign(AccessClaims{
		Role:             "customer",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))},
	}, secret)
	require.NoError(t, err)

	_, err = AccessClaimsFromToken(tok, secret)
	require.Error(t, err)
	assert.True(t, errors.Is(err, jwt.ErrTokenExpired))
}

func TestRefreshClaimsFromToken_RejectsOtherAlg(t *testing.T) {
	t.Parallel()

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "1", ID: NewJTI()},
	}).SignedString(secret)
	require.NoError(t, err)

	_, err = RefreshClaimsFromToken(tok, secret)
	assert.Error(t, err)
}

func TestCookies(t *testing.T) {
	t.Parallel()

	exp := time.Now().Add(time.Hour)
	c := CreateCookie(AccessCookie, "v", "/", exp)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)

	d := DeleteCookie(RefreshCookie, "/")
	assert.Equal(t, -1, d.MaxAge)
	assert.Empty(t, d.Value)
}

func TestSha256Hex(t *testing.T) {
	t.Parallel()

	assert.Len(t, Sha256Hex("abc"), 64)
	assert.Equal(t, Sha256Hex("abc"), Sha256Hex("abc"))
	assert.NotEqual(t, NewJTI(), NewJTI())
}
