package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AnshRaj112/contactbook-backend/internal/apperrors"
	"github.com/AnshRaj112/contactbook-backend/internal/auth"
	"github.com/AnshRaj112/contactbook-backend/internal/response"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type guardResult struct {
	status  int
	body    response.Envelope
	reached bool
	userID  string
}

func runGuard(t *testing.T, mw func(http.Handler) http.Handler, req *http.Request) guardResult {
	t.Helper()
	var res guardResult
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res.reached = true
		res.userID, _ = UserID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	rec := httptest.NewRecorder()
	mw(next).ServeHTTP(rec, req)
	res.status = rec.Code
	if rec.Code != http.StatusNoContent {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res.body))
	}
	return res
}

func TestRequireAuth(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	tokens, err := auth.NewTokenService(testSecret, clock)
	require.NoError(t, err)
	valid, err := tokens.Issue("user-42")
	require.NoError(t, err)

	mw := RequireAuth(tokens, zap.NewNop())

	t.Run("no header", func(t *testing.T) {
		res := runGuard(t, mw, httptest.NewRequest(http.MethodGet, "/api/contacts", nil))
		assert.Equal(t, http.StatusUnauthorized, res.status)
		assert.Equal(t, apperrors.CodeUnauthenticated, res.body.Code)
		assert.False(t, res.body.Success)
		assert.False(t, res.reached)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/contacts", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		res := runGuard(t, mw, req)
		assert.Equal(t, http.StatusUnauthorized, res.status)
		assert.Equal(t, apperrors.CodeTokenInvalid, res.body.Code)
		assert.False(t, res.reached)
	})

	t.Run("bearer without token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/contacts", nil)
		req.Header.Set("Authorization", "Bearer   ")
		res := runGuard(t, mw, req)
		assert.Equal(t, http.StatusUnauthorized, res.status)
		assert.False(t, res.reached)
	})

	t.Run("forged token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/contacts", nil)
		req.Header.Set("Authorization", "Bearer "+valid+"x")
		res := runGuard(t, mw, req)
		assert.Equal(t, http.StatusUnauthorized, res.status)
		assert.Equal(t, apperrors.CodeTokenInvalid, res.body.Code)
		assert.False(t, res.reached)
	})

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/contacts", nil)
		req.Header.Set("Authorization", "bearer "+valid)
		res := runGuard(t, mw, req)
		assert.Equal(t, http.StatusNoContent, res.status)
		assert.True(t, res.reached)
		assert.Equal(t, "user-42", res.userID)
	})

	t.Run("expired token", func(t *testing.T) {
		later, err := auth.NewTokenService(testSecret, func() time.Time { return now.Add(31 * 24 * time.Hour) })
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/api/contacts", nil)
		req.Header.Set("Authorization", "Bearer "+valid)
		res := runGuard(t, RequireAuth(later, zap.NewNop()), req)
		assert.Equal(t, http.StatusUnauthorized, res.status)
		assert.Equal(t, apperrors.CodeTokenExpired, res.body.Code)
		assert.False(t, res.reached)
	})

	t.Run("query token ignored for plain routes", func(t *testing.T) {
		res := runGuard(t, mw, httptest.NewRequest(http.MethodGet, "/api/contacts?token="+valid, nil))
		assert.Equal(t, http.StatusUnauthorized, res.status)
		assert.False(t, res.reached)
	})

	t.Run("query token accepted for websocket routes", func(t *testing.T) {
		res := runGuard(t, RequireAuthWS(tokens, zap.NewNop()), httptest.NewRequest(http.MethodGet, "/ws/contacts?token="+valid, nil))
		assert.True(t, res.reached)
		assert.Equal(t, "user-42", res.userID)
	})
}

func TestHostCheck(t *testing.T) {
	h := HostCheck("api.example.com", zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "http://API.example.com:443/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "http://evil.example.com/health", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var env response.Envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.False(t, env.Success)
	assert.Equal(t, apperrors.CodeForbidden, env.Code)

	open := HostCheck("", zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	rec = httptest.NewRecorder()
	open.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://anything.test/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	h := CORS([]string{"https://app.example.com"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("preflight must not reach the handler")
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/contacts", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}
