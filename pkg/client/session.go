package client

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// User is the signed-in account.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type authData struct {
	User
	Token string `json:"token"`
}

// Session owns the current token and user. It is the only holder of auth
// state; nothing is kept at package level.
type Session struct {
	transport *Transport
	store     TokenStore

	// persistMu orders every change to the token together with the matching
	// store write, so an eviction and a login cannot interleave their
	// memory and disk updates. Lock order: persistMu, then mu.
	persistMu sync.Mutex

	mu    sync.RWMutex
	token string
	user  *User
}

// NewSession binds a session to transport and subscribes it to the
// transport's 401 events. A transport serves one session.
func NewSession(transport *Transport, store TokenStore) (*Session, error) {
	if store == nil {
		store = NewMemoryTokenStore()
	}
	s := &Session{transport: transport, store: store}
	if err := transport.SetUnauthorizedHandler(s.handleUnauthorized); err != nil {
		return nil, err
	}
	return s, nil
}

// Init restores a persisted token and confirms it with the server. A token
// the server rejects is discarded and Init returns nil with no user.
func (s *Session) Init(ctx context.Context) error {
	token, err := s.store.Load()
	if err != nil {
		return err
	}
	if token == "" {
		return nil
	}

	s.persistMu.Lock()
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	s.persistMu.Unlock()

	var user User
	if err := s.transport.Do(ctx, http.MethodGet, "/api/auth/me", token, nil, &user); err != nil {
		if IsUnauthorized(err) {
			// handleUnauthorized already cleared the session.
			return nil
		}
		return err
	}

	s.mu.Lock()
	if s.token == token {
		s.user = &user
	}
	s.mu.Unlock()
	return nil
}

// Login exchanges credentials for a token and persists it.
func (s *Session) Login(ctx context.Context, email, password string) (*User, error) {
	var data authData
	body := map[string]string{"email": email, "password": password}
	if err := s.transport.Do(ctx, http.MethodPost, "/api/auth/login", "", body, &data); err != nil {
		return nil, err
	}
	return s.adopt(data)
}

// Signup creates an account and signs in as it.
func (s *Session) Signup(ctx context.Context, name, email, password string) (*User, error) {
	var data authData
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := s.transport.Do(ctx, http.MethodPost, "/api/auth/signup", "", body, &data); err != nil {
		return nil, err
	}
	return s.adopt(data)
}

// Logout ends the session locally. Tokens are stateless, so there is no
// server call.
func (s *Session) Logout() error {
	return s.Teardown()
}

// Teardown clears the in-memory session and the persisted token.
func (s *Session) Teardown() error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()
	return s.store.Clear()
}

// Token returns the current bearer token, or "" when signed out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the signed-in user, or nil.
func (s *Session) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Authenticated reports whether the session holds a token.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

func (s *Session) adopt(data authData) (*User, error) {
	user := data.User
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	s.token = data.Token
	s.user = &user
	s.mu.Unlock()
	if err := s.store.Save(data.Token); err != nil {
		return &user, err
	}
	return &user, nil
}

// handleUnauthorized evicts the session only if the rejected token is still
// the current one; a 401 for a token already replaced by a newer login is
// ignored.
func (s *Session) handleUnauthorized(ev UnauthorizedEvent) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	if ev.Token == "" || ev.Token != s.token {
		s.mu.Unlock()
		return
	}
	s.token = ""
	s.user = nil
	s.mu.Unlock()
	_ = s.store.Clear()
}
