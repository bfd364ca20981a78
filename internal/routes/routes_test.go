package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AnshRaj112/contactbook-backend/internal/auth"
	"github.com/AnshRaj112/contactbook-backend/internal/handlers"
	"github.com/AnshRaj112/contactbook-backend/internal/models"
	"github.com/AnshRaj112/contactbook-backend/internal/services"
	"github.com/AnshRaj112/contactbook-backend/internal/store"
)

const testSecret = "routes-test-secret-0123456789-abcdef"

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Code    string            `json:"code"`
	Errors  map[string]string `json:"errors"`
	Count   *int              `json:"count"`
	Data    json.RawMessage   `json:"data"`
}

type testAPI struct {
	srv    *httptest.Server
	users  *store.MemoryUserStore
	tokens *auth.TokenService
	events *services.ContactEvents
}

func newTestAPI(t *testing.T, ready func(context.Context) error) *testAPI {
	t.Helper()
	log := zap.NewNop()
	tokens, err := auth.NewTokenService(testSecret, nil)
	require.NoError(t, err)

	api := &testAPI{
		users:  store.NewMemoryUserStore(),
		tokens: tokens,
		events: services.NewContactEvents(nil, log),
	}
	r := chi.NewRouter()
	SetupRoutes(r, Deps{
		Auth:     handlers.NewAuthHandler(api.users, tokens, log),
		Contacts: handlers.NewContactHandler(store.NewMemoryContactStore(), api.events, log),
		Feed:     handlers.NewContactFeed(api.events, nil, log),
		Tokens:   tokens,
		Ready:    ready,
		Log:      log,
	})
	api.srv = httptest.NewServer(r)
	t.Cleanup(api.srv.Close)
	return api
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req, err := http.NewRequest(method, a.srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	if resp.Header.Get("Content-Type") == "application/json" {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	}
	return resp.StatusCode, env
}

func (a *testAPI) signup(t *testing.T, name, email string) handlers.AuthResponse {
	t.Helper()
	status, env := a.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name": name, "email": email, "password": "hunter22",
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	var out handlers.AuthResponse
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func TestSignupLoginMe(t *testing.T) {
	api := newTestAPI(t, nil)

	acct := api.signup(t, "  Jane Doe ", "Jane@Example.com")
	assert.NotEmpty(t, acct.ID)
	assert.Equal(t, "Jane Doe", acct.Name)
	assert.Equal(t, "jane@example.com", acct.Email)
	assert.NotEmpty(t, acct.Token)

	status, env := api.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name": "Other", "email": "JANE@example.com", "password": "hunter22",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", env.Code)

	status, env = api.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name": "J", "email": "nope", "password": "123",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", env.Code)
	assert.Len(t, env.Errors, 3)

	status, env = api.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "jane@example.com", "password": "hunter22",
	})
	require.Equal(t, http.StatusOK, status)
	var login handlers.AuthResponse
	require.NoError(t, json.Unmarshal(env.Data, &login))
	assert.Equal(t, acct.ID, login.ID)

	status, env = api.do(t, http.MethodGet, "/api/auth/me", login.Token, nil)
	require.Equal(t, http.StatusOK, status)
	var me models.User
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, acct.ID, me.ID)
	assert.NotContains(t, string(env.Data), "password")
	assert.NotContains(t, string(env.Data), "argon2id")
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	api := newTestAPI(t, nil)
	api.signup(t, "Jane", "jane@example.com")

	for name, body := range map[string]map[string]string{
		"wrong password": {"email": "jane@example.com", "password": "wrong-one"},
		"unknown email":  {"email": "who@example.com", "password": "hunter22"},
	} {
		t.Run(name, func(t *testing.T) {
			status, env := api.do(t, http.MethodPost, "/api/auth/login", "", body)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.False(t, env.Success)
			assert.Equal(t, "INVALID_CREDENTIALS", env.Code)
			assert.Equal(t, "Invalid email or password", env.Message)
		})
	}

	status, env := api.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "jane@example.com"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Password is required", env.Errors["password"])
}

func TestMeAfterUserDeleted(t *testing.T) {
	api := newTestAPI(t, nil)
	acct := api.signup(t, "Jane", "jane@example.com")
	api.users.Delete(acct.ID)

	status, env := api.do(t, http.MethodGet, "/api/auth/me", acct.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHENTICATED", env.Code)
}

func TestContactsRequireToken(t *testing.T) {
	api := newTestAPI(t, nil)

	status, env := api.do(t, http.MethodGet, "/api/contacts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHENTICATED", env.Code)

	status, env = api.do(t, http.MethodGet, "/api/contacts", "not.a.jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "TOKEN_INVALID", env.Code)

	past, err := auth.NewTokenService(testSecret, func() time.Time { return time.Now().Add(-31 * 24 * time.Hour) })
	require.NoError(t, err)
	stale, err := past.Issue("someone")
	require.NoError(t, err)
	status, env = api.do(t, http.MethodGet, "/api/contacts", stale, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "TOKEN_EXPIRED", env.Code)
}

func TestContactLifecycle(t *testing.T) {
	api := newTestAPI(t, nil)
	jane := api.signup(t, "Jane", "jane@example.com")
	bob := api.signup(t, "Bob", "bob@example.com")

	feed, unsubscribe := api.events.Subscribe(jane.ID)
	defer unsubscribe()

	status, env := api.do(t, http.MethodGet, "/api/contacts", jane.Token, nil)
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, env.Count)
	assert.Equal(t, 0, *env.Count)
	assert.JSONEq(t, `[]`, string(env.Data))

	status, env = api.do(t, http.MethodPost, "/api/contacts", jane.Token, map[string]string{
		"name": " Ann Lee ", "email": "ANN@example.com", "phone": "9876543210", "owner_id": bob.ID,
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	var created models.Contact
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "Ann Lee", created.Name)
	assert.Equal(t, "ann@example.com", created.Email)
	assert.Equal(t, jane.ID, created.OwnerID)
	assert.Equal(t, "", created.Message)

	select {
	case ev := <-feed:
		assert.Equal(t, services.EventContactCreated, ev.Type)
		assert.Equal(t, created.ID.Hex(), ev.ContactID)
	case <-time.After(time.Second):
		t.Fatal("no created event")
	}

	status, env = api.do(t, http.MethodPost, "/api/contacts", jane.Token, map[string]string{
		"name": "Ann", "email": "ann@example.com", "phone": "+1 987 654 3210",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", env.Code)
	assert.Equal(t, "Phone number must contain only digits (0-9)", env.Errors["phone"])

	status, env = api.do(t, http.MethodPost, "/api/contacts", jane.Token, `{"name":`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "BAD_REQUEST", env.Code)

	status, env = api.do(t, http.MethodGet, "/api/contacts", jane.Token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, *env.Count)

	status, env = api.do(t, http.MethodGet, "/api/contacts", bob.Token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 0, *env.Count)

	status, env = api.do(t, http.MethodDelete, "/api/contacts/"+created.ID.Hex(), bob.Token, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", env.Code)

	status, _ = api.do(t, http.MethodDelete, "/api/contacts/not-an-id", jane.Token, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, env = api.do(t, http.MethodDelete, "/api/contacts/"+created.ID.Hex(), jane.Token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Contact deleted successfully", env.Message)

	select {
	case ev := <-feed:
		assert.Equal(t, services.EventContactDeleted, ev.Type)
	case <-time.After(time.Second):
		t.Fatal("no deleted event")
	}

	status, env = api.do(t, http.MethodDelete, "/api/contacts/"+created.ID.Hex(), jane.Token, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", env.Code)
}

func TestHealthAndReady(t *testing.T) {
	api := newTestAPI(t, func(context.Context) error { return errors.New("mongo down") })

	resp, err := http.Get(api.srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	status, env := api.do(t, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.False(t, env.Success)

	ok := newTestAPI(t, func(context.Context) error { return nil })
	status, _ = ok.do(t, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusOK, status)
}
