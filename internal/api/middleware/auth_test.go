package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/docsift/docsift-api/internal/config"
	"github.com/docsift/docsift-api/internal/service/auth"
)

const testSecret = "test-secret-key-that-is-at-least-32-chars"

func testAuthenticator(t *testing.T, ownerID uuid.UUID, key string) *auth.Authenticator {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.MinCost)
	require.NoError(t, err)

	a, err := auth.New(config.AuthConfig{
		JWTSecret: testSecret,
		APIKeys: []config.APIKeyConfig{
			{OwnerID: ownerID.String(), KeyHash: string(hash)},
		},
	})
	require.NoError(t, err)
	return a
}

// protectedProbe records the owner id the middleware resolved.
func protectedProbe(t *testing.T, got *uuid.UUID) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := GetOwnerID(r)
		require.True(t, ok)
		*got = ownerID
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticateWithToken(t *testing.T) {
	ownerID := uuid.New()
	authenticator := testAuthenticator(t, ownerID, "unused-key")

	tokenOwner := uuid.New()
	token, err := authenticator.GenerateToken(tokenOwner, time.Hour)
	require.NoError(t, err)

	var got uuid.UUID
	handler := NewAuthMiddleware(authenticator).Authenticate(protectedProbe(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/api/task/abc", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, tokenOwner, got)
}

func TestAuthenticateWithAPIKey(t *testing.T) {
	ownerID := uuid.New()
	authenticator := testAuthenticator(t, ownerID, "the-api-key")

	var got uuid.UUID
	handler := NewAuthMiddleware(authenticator).Authenticate(protectedProbe(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/api/task/abc", nil)
	req.Header.Set("Authorization", "Bearer the-api-key")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, ownerID, got)
}

func TestAuthenticateRejections(t *testing.T) {
	authenticator := testAuthenticator(t, uuid.New(), "the-api-key")

	expired, err := auth.New(config.AuthConfig{JWTSecret: testSecret})
	require.NoError(t, err)
	// A token already past its lifetime plus the clock skew.
	expiredToken, err := expired.GenerateToken(uuid.New(), -time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic dXNlcjpwYXNz"},
		{"malformed bearer", "Bearer"},
		{"wrong api key", "Bearer wrong-key"},
		{"expired token", "Bearer " + expiredToken},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			handler := NewAuthMiddleware(authenticator).
				Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					t.Fatal("protected handler must not run")
				}))

			req := httptest.NewRequest(http.MethodGet, "/api/task/abc", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusUnauthorized, rr.Code)
		})
	}
}
