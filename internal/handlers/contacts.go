package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/AnshRaj112/contactbook-backend/internal/apperrors"
	"github.com/AnshRaj112/contactbook-backend/internal/middleware"
	"github.com/AnshRaj112/contactbook-backend/internal/response"
	"github.com/AnshRaj112/contactbook-backend/internal/services"
	"github.com/AnshRaj112/contactbook-backend/internal/store"
	"github.com/AnshRaj112/contactbook-backend/pkg/validation"
)

// EventPublisher announces contact changes to the owner's live clients.
type EventPublisher interface {
	Publish(ctx context.Context, event services.ContactEvent) error
}

// ContactHandler serves the owner-scoped contact collection.
type ContactHandler struct {
	contacts store.ContactStore
	events   EventPublisher
	log      *zap.Logger
}

// NewContactHandler builds a ContactHandler. events may be nil.
func NewContactHandler(contacts store.ContactStore, events EventPublisher, log *zap.Logger) *ContactHandler {
	return &ContactHandler{contacts: contacts, events: events, log: log}
}

// Create handles POST /api/contacts
func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}

	var in validation.ContactInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	contact, err := h.contacts.Create(r.Context(), ownerID, in)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	h.publish(r.Context(), services.EventContactCreated, ownerID, contact.ID.Hex())
	response.Success(w, http.StatusCreated, contact, "Contact created successfully")
}

// List handles GET /api/contacts
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}

	contacts, err := h.contacts.List(r.Context(), ownerID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	response.List(w, contacts)
}

// Delete handles DELETE /api/contacts/{id}
func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.contacts.Delete(r.Context(), ownerID, id); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	h.publish(r.Context(), services.EventContactDeleted, ownerID, id)
	response.Success(w, http.StatusOK, nil, "Contact deleted successfully")
}

func (h *ContactHandler) owner(w http.ResponseWriter, r *http.Request) (string, bool) {
	ownerID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, r, h.log, apperrors.New(apperrors.CodeUnauthenticated, "Not authorized, no token"))
	}
	return ownerID, ok
}

// publish is best effort; the write already succeeded.
func (h *ContactHandler) publish(ctx context.Context, eventType, ownerID, contactID string) {
	if h.events == nil {
		return
	}
	err := h.events.Publish(context.WithoutCancel(ctx), services.ContactEvent{
		Type:      eventType,
		OwnerID:   ownerID,
		ContactID: contactID,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		h.log.Warn("failed to publish contact event",
			zap.String("type", eventType),
			zap.String("owner_id", ownerID),
			zap.Error(err),
		)
	}
}
