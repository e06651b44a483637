package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"masterboxer.com/confessly/config"
)

func newAuth(t *testing.T) *Authenticator {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("letmein"), bcrypt.MinCost)
	require.NoError(t, err)
	return New(config.AdminConfig{PasswordHash: string(hash), JWTSecret: "test-secret"})
}

func TestLoginAndVerify(t *testing.T) {
	a := newAuth(t)
	now := time.Now().Truncate(time.Second)
	a.now = func() time.Time { return now }

	tok, expires, err := a.Login("letmein")
	require.NoError(t, err)
	assert.Equal(t, now.Add(12*time.Hour), expires)
	assert.NoError(t, a.Verify(tok))
}

func TestLoginWrongPassword(t *testing.T) {
	a := newAuth(t)
	_, _, err := a.Login("guess")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestDisabledWithoutConfig(t *testing.T) {
	a := New(config.AdminConfig{})
	_, _, err := a.Login("anything")
	assert.ErrorIs(t, err, ErrDisabled)
	assert.ErrorIs(t, a.Verify("x.y.z"), ErrDisabled)
}

func TestExpiredTokenRejected(t *testing.T) {
	a := newAuth(t)
	issued := time.Now().Add(-13 * time.Hour)
	a.now = func() time.Time { return issued }
	tok, _, err := a.Login("letmein")
	require.NoError(t, err)

	a.now = time.Now
	assert.ErrorIs(t, a.Verify(tok), ErrInvalidToken)
}

func TestTokenSignedWithOtherSecretRejected(t *testing.T) {
	a := newAuth(t)
	claims := Claims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other"))
	require.NoError(t, err)

	assert.ErrorIs(t, a.Verify(forged), ErrInvalidToken)
}

func TestNonAdminRoleRejected(t *testing.T) {
	a := newAuth(t)
	claims := Claims{
		Role: "viewer",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	assert.ErrorIs(t, a.Verify(tok), ErrInvalidToken)
}

func TestRequireAdmin(t *testing.T) {
	a := newAuth(t)
	tok, _, err := a.Login("letmein")
	require.NoError(t, err)

	h := a.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"garbage", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer " + tok, http.StatusNoContent},
		{"lowercase scheme", "bearer " + tok, http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/confessions", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
			assert.Equal(t, tc.want == http.StatusNoContent, a.IsAdmin(req))
		})
	}
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("pw")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("pw")))
}
