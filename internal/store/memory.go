package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AnshRaj112/contactbook-backend/internal/models"
	"github.com/AnshRaj112/contactbook-backend/pkg/validation"
)

// MemoryContactStore is a process-local ContactStore with the same
// ownership semantics as the MongoDB one. Used by tests and local tooling.
type MemoryContactStore struct {
	mu       sync.RWMutex
	contacts map[string]models.Contact
	now      func() time.Time
}

func NewMemoryContactStore() *MemoryContactStore {
	return &MemoryContactStore{contacts: make(map[string]models.Contact), now: time.Now}
}

func (s *MemoryContactStore) Create(_ context.Context, ownerID string, in validation.ContactInput) (*models.Contact, error) {
	contact, err := newContact(ownerID, in, s.now())
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.contacts[contact.ID.Hex()] = *contact
	s.mu.Unlock()
	return contact, nil
}

func (s *MemoryContactStore) List(_ context.Context, ownerID string) ([]models.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Contact, 0)
	for _, c := range s.contacts {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *MemoryContactStore) Delete(_ context.Context, ownerID, id string) error {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return errContactNotFound
	}
	key := oid.Hex()

	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contacts[key]
	if !ok {
		return errContactNotFound
	}
	if c.OwnerID != ownerID {
		return errContactForbidden
	}
	delete(s.contacts, key)
	return nil
}

// MemoryUserStore is a process-local UserStore.
type MemoryUserStore struct {
	mu      sync.RWMutex
	byID    map[string]models.User
	byEmail map[string]string
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{byID: make(map[string]models.User), byEmail: make(map[string]string)}
}

func (s *MemoryUserStore) Create(_ context.Context, u *models.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byEmail[u.Email]; taken {
		return errEmailTaken
	}
	s.byID[u.ID] = *u
	s.byEmail[u.Email] = u.ID
	return nil
}

func (s *MemoryUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, errUserNotFound
	}
	u := s.byID[id]
	return &u, nil
}

func (s *MemoryUserStore) FindByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, errUserNotFound
	}
	return &u, nil
}

// Delete removes an account. Tests use it to model a user deleted while
// their token is still valid.
func (s *MemoryUserStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.byID[id]; ok {
		delete(s.byEmail, u.Email)
		delete(s.byID, id)
	}
}
