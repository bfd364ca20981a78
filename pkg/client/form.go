package client

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/AnshRaj112/contactbook-backend/pkg/validation"
)

// ErrSubmitInProgress is returned when Submit is called while an earlier
// submit has not returned.
var ErrSubmitInProgress = errors.New("client: submit already in progress")

// ContactForm submits new contacts, one at a time.
type ContactForm struct {
	client   *Client
	list     *ContactList
	inFlight atomic.Bool
}

// NewContactForm returns a form that marks list stale after each save.
// list may be nil.
func NewContactForm(c *Client, list *ContactList) *ContactForm {
	return &ContactForm{client: c, list: list}
}

// Submit saves in. A concurrent second call fails fast with
// ErrSubmitInProgress rather than sending a duplicate.
func (f *ContactForm) Submit(ctx context.Context, in validation.ContactInput) (*Contact, error) {
	if !f.inFlight.CompareAndSwap(false, true) {
		return nil, ErrSubmitInProgress
	}
	defer f.inFlight.Store(false)

	contact, err := f.client.CreateContact(ctx, in)
	if err != nil {
		return nil, err
	}
	if f.list != nil {
		f.list.Invalidate()
	}
	return contact, nil
}

// Submitting reports whether a submit is in flight.
func (f *ContactForm) Submitting() bool {
	return f.inFlight.Load()
}
