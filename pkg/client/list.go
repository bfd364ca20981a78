package client

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
)

// ContactList caches the caller's contacts. Every refresh replaces the
// whole list; refreshes never overlap.
type ContactList struct {
	client *Client

	refreshMu sync.Mutex

	mu       sync.RWMutex
	contacts []Contact
	loaded   uint64 // version the current contents were fetched at

	version atomic.Uint64
}

func NewContactList(c *Client) *ContactList {
	return &ContactList{client: c}
}

// Refresh refetches the list and replaces the cached copy.
func (l *ContactList) Refresh(ctx context.Context) error {
	l.refreshMu.Lock()
	defer l.refreshMu.Unlock()

	v := l.version.Load()
	contacts, err := l.client.ListContacts(ctx)
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.contacts = contacts
	l.loaded = v
	l.mu.Unlock()
	return nil
}

// Contacts returns the cached list in server order.
func (l *ContactList) Contacts() []Contact {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.contacts)
}

// Sorted returns the cached list ordered by s.
func (l *ContactList) Sorted(s SortState) []Contact {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return s.Apply(l.contacts)
}

// Delete removes id on the server and marks the list stale.
func (l *ContactList) Delete(ctx context.Context, id string) error {
	if err := l.client.DeleteContact(ctx, id); err != nil {
		return err
	}
	l.Invalidate()
	return nil
}

// Invalidate records that the server list changed and returns the new version.
func (l *ContactList) Invalidate() uint64 {
	return l.version.Add(1)
}

// Version is bumped after every mutation.
func (l *ContactList) Version() uint64 {
	return l.version.Load()
}

// Stale reports whether a mutation happened since the last refresh started.
func (l *ContactList) Stale() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.contacts == nil || l.loaded != l.version.Load()
}

// Follow keeps the list current from the change feed until ctx ends. After
// each event it refreshes and calls onChange with the new contents.
func (l *ContactList) Follow(ctx context.Context, onChange func([]Contact)) error {
	return l.client.Watch(ctx, func(ContactEvent) {
		l.Invalidate()
		if err := l.Refresh(ctx); err != nil {
			return
		}
		if onChange != nil {
			onChange(l.Contacts())
		}
	})
}
