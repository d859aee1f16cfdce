package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedAdminToken(t *testing.T, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "admin",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestAuthenticate_RejectsMissingAndBadTokens(t *testing.T) {
	m := newAuthMiddleware(map[string]string{"ADMIN_JWT_SECRET": "s3cret"})
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"not bearer", "Basic abc"},
		{"empty token", "Bearer "},
		{"garbage token", "Bearer not.a.jwt"},
		{"wrong secret", "Bearer " + signedAdminToken(t, "other-secret")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodDelete, "/projects/x", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			recorder := httptest.NewRecorder()

			m.authenticate(next).ServeHTTP(recorder, r)
			assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		})
	}
}

func TestAuthenticate_AcceptsValidToken(t *testing.T) {
	m := newAuthMiddleware(map[string]string{"ADMIN_JWT_SECRET": "s3cret"})

	var sawAdmin bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawAdmin = ctxIsAdmin(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	r := httptest.NewRequest(http.MethodDelete, "/projects/x", nil)
	r.Header.Set("Authorization", "Bearer "+signedAdminToken(t, "s3cret"))
	recorder := httptest.NewRecorder()

	m.authenticate(next).ServeHTTP(recorder, r)
	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.True(t, sawAdmin)
}

func TestDetectAdmin_NeverRejects(t *testing.T) {
	m := newAuthMiddleware(map[string]string{"ADMIN_JWT_SECRET": "s3cret"})

	var sawAdmin bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawAdmin = ctxIsAdmin(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	// Anonymous request passes through without the admin flag.
	r := httptest.NewRequest(http.MethodGet, "/projects", nil)
	recorder := httptest.NewRecorder()
	m.detectAdmin(next).ServeHTTP(recorder, r)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.False(t, sawAdmin)

	// Valid token flips the flag.
	r = httptest.NewRequest(http.MethodGet, "/projects", nil)
	r.Header.Set("Authorization", "Bearer "+signedAdminToken(t, "s3cret"))
	recorder = httptest.NewRecorder()
	m.detectAdmin(next).ServeHTTP(recorder, r)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.True(t, sawAdmin)
}
