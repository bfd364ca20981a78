package client

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/AnshRaj112/contactbook-backend/pkg/validation"
)

// Contact is a saved contact as the API returns it.
type Contact struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidationError is returned when input fails the local checks before any
// request is sent.
type ValidationError struct {
	Fields validation.FieldErrors
}

func (e *ValidationError) Error() string { return "validation failed" }

// FieldErrors extracts per-field messages from a local or server
// validation failure. It returns nil for any other error.
func FieldErrors(err error) validation.FieldErrors {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Fields
	}
	return nil
}

// Client bundles a transport and the session that authenticates it.
type Client struct {
	Transport *Transport
	Session   *Session
}

// New builds a client for baseURL. store may be nil for an in-memory session.
func New(baseURL string, store TokenStore, httpClient *http.Client) (*Client, error) {
	t := NewTransport(baseURL, httpClient)
	s, err := NewSession(t, store)
	if err != nil {
		return nil, err
	}
	return &Client{Transport: t, Session: s}, nil
}

// PhoneHint runs the lenient phone check, for input hints while typing.
// Submission is judged by the strict rule.
func PhoneHint(phone string) validation.PhoneResult {
	return validation.ValidatePhoneLenient(phone)
}

// CreateContact checks in locally and then saves it. The server validates
// again and its answer is final.
func (c *Client) CreateContact(ctx context.Context, in validation.ContactInput) (*Contact, error) {
	in = validation.NormalizeContact(in)
	if errs := validation.ValidateContact(in); !errs.Empty() {
		return nil, &ValidationError{Fields: errs}
	}
	token, err := c.token()
	if err != nil {
		return nil, err
	}
	var out Contact
	if err := c.Transport.Do(ctx, http.MethodPost, "/api/contacts", token, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListContacts returns the caller's contacts in server order.
func (c *Client) ListContacts(ctx context.Context) ([]Contact, error) {
	token, err := c.token()
	if err != nil {
		return nil, err
	}
	var out []Contact
	if err := c.Transport.Do(ctx, http.MethodGet, "/api/contacts", token, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []Contact{}
	}
	return out, nil
}

// DeleteContact removes the contact with id.
func (c *Client) DeleteContact(ctx context.Context, id string) error {
	token, err := c.token()
	if err != nil {
		return err
	}
	return c.Transport.Do(ctx, http.MethodDelete, "/api/contacts/"+url.PathEscape(id), token, nil, nil)
}

// Me fetches the signed-in user from the server.
func (c *Client) Me(ctx context.Context) (*User, error) {
	token, err := c.token()
	if err != nil {
		return nil, err
	}
	var out User
	if err := c.Transport.Do(ctx, http.MethodGet, "/api/auth/me", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) token() (string, error) {
	token := c.Session.Token()
	if token == "" {
		return "", ErrNotAuthenticated
	}
	return token, nil
}
