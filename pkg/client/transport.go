// Package client is a Go SDK for the contactbook API: an explicit session,
// a transport that reports rejected tokens, and the form and list state a
// front end needs.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/AnshRaj112/contactbook-backend/pkg/validation"
)

var (
	// ErrHandlerAlreadySet is returned when a second unauthorized handler is registered.
	ErrHandlerAlreadySet = errors.New("client: unauthorized handler already set")
	// ErrNotAuthenticated is returned by calls that need a token when the session has none.
	ErrNotAuthenticated = errors.New("client: not authenticated")
)

// UnauthorizedEvent describes a request the server rejected with 401.
// Token is the token that request carried.
type UnauthorizedEvent struct {
	Token string
	Path  string
	Code  string
}

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Code    string
	Message string
	Fields  validation.FieldErrors
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%d %s)", e.Message, e.Status, e.Code)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.Status)
}

// IsUnauthorized reports whether err is a 401 from the server.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

type envelope struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Code    string                 `json:"code"`
	Errors  validation.FieldErrors `json:"errors"`
	Count   *int                   `json:"count"`
	Data    json.RawMessage        `json:"data"`
}

// Transport sends JSON requests to the API and unwraps the response envelope.
type Transport struct {
	baseURL string
	http    *http.Client

	mu             sync.RWMutex
	onUnauthorized func(UnauthorizedEvent)
}

// NewTransport targets baseURL. A nil httpClient gets a 15 second timeout.
func NewTransport(baseURL string, httpClient *http.Client) *Transport {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Transport{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// BaseURL returns the API root the transport targets.
func (t *Transport) BaseURL() string { return t.baseURL }

// SetUnauthorizedHandler registers fn to receive every 401. Only one handler
// may be registered.
func (t *Transport) SetUnauthorizedHandler(fn func(UnauthorizedEvent)) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.onUnauthorized != nil {
		return ErrHandlerAlreadySet
	}
	t.onUnauthorized = fn
	return nil
}

func (t *Transport) emitUnauthorized(ev UnauthorizedEvent) {
	t.mu.RLock()
	fn := t.onUnauthorized
	t.mu.RUnlock()
	if fn != nil {
		fn(ev)
	}
}

// Do sends body as JSON and decodes the envelope's data into out. Either
// may be nil.
func (t *Transport) Do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := t.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && !errors.Is(err, io.EOF) {
		if resp.StatusCode >= http.StatusBadRequest {
			env.Message = http.StatusText(resp.StatusCode)
		} else {
			return fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{
			Status:  resp.StatusCode,
			Code:    env.Code,
			Message: env.Message,
			Fields:  env.Errors,
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		if resp.StatusCode == http.StatusUnauthorized && token != "" {
			t.emitUnauthorized(UnauthorizedEvent{Token: token, Path: path, Code: env.Code})
		}
		return apiErr
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode %s %s data: %w", method, path, err)
		}
	}
	return nil
}
