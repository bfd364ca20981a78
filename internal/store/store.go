// Package store persists contacts and users. Every contact operation is
// scoped to the owner id taken from the caller's verified token.
package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AnshRaj112/contactbook-backend/internal/apperrors"
	"github.com/AnshRaj112/contactbook-backend/internal/models"
	"github.com/AnshRaj112/contactbook-backend/pkg/validation"
)

const (
	ContactsCollection = "contacts"
	UsersCollection    = "users"
)

// ContactStore is the contact persistence contract.
type ContactStore interface {
	// Create validates in and saves it under ownerID.
	Create(ctx context.Context, ownerID string, in validation.ContactInput) (*models.Contact, error)
	// List returns ownerID's contacts in no particular order.
	List(ctx context.Context, ownerID string) ([]models.Contact, error)
	// Delete removes id if ownerID owns it. Unknown ids are NotFound and
	// foreign ids are Forbidden.
	Delete(ctx context.Context, ownerID, id string) error
}

// UserStore is the account persistence contract.
type UserStore interface {
	// Create saves u. A taken email is a CodeConflict error.
	Create(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
}

var (
	errContactNotFound  = apperrors.New(apperrors.CodeNotFound, "Contact not found")
	errContactForbidden = apperrors.New(apperrors.CodeForbidden, "Not authorized to delete this contact")
	errUserNotFound     = apperrors.New(apperrors.CodeNotFound, "User not found")
	errEmailTaken       = apperrors.New(apperrors.CodeConflict, "User already exists with this email")
)

// newContact normalizes and validates in, returning the document to insert.
func newContact(ownerID string, in validation.ContactInput, now time.Time) (*models.Contact, error) {
	if ownerID == "" {
		return nil, apperrors.New(apperrors.CodeUnauthenticated, "Owner is required")
	}
	in = validation.NormalizeContact(in)
	if errs := validation.ValidateContact(in); !errs.Empty() {
		return nil, apperrors.Validation(errs)
	}
	now = now.UTC().Truncate(time.Millisecond)
	return &models.Contact{
		ID:        primitive.NewObjectID(),
		CreatedAt: now,
		UpdatedAt: now,
		OwnerID:   ownerID,
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		Message:   in.Message,
	}, nil
}
