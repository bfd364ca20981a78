// Package response writes the JSON envelope every endpoint returns.
package response

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/AnshRaj112/contactbook-backend/internal/apperrors"
	"github.com/AnshRaj112/contactbook-backend/pkg/validation"
)

// genericFailure is shown for storage and unexpected errors; the cause is
// only logged.
const genericFailure = "Something went wrong, please try again"

type Envelope struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message,omitempty"`
	Code    apperrors.Code         `json:"code,omitempty"`
	Errors  validation.FieldErrors `json:"errors,omitempty"`
	Count   *int                   `json:"count,omitempty"`
	Data    any                    `json:"data,omitempty"`
}

func JSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func Success(w http.ResponseWriter, status int, data any, message string) {
	JSON(w, status, Envelope{Success: true, Data: data, Message: message})
}

// List writes a collection with its length. items must be a non-nil slice
// so an empty result encodes as [].
func List[T any](w http.ResponseWriter, items []T) {
	if items == nil {
		items = []T{}
	}
	n := len(items)
	JSON(w, http.StatusOK, Envelope{Success: true, Count: &n, Data: items})
}

// Error renders err with the status its code maps to. Storage and unknown
// failures are logged with their cause and shown generically.
func Error(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		appErr = apperrors.Wrap(apperrors.CodeUnknown, genericFailure, err)
	}

	status := appErr.Code.HTTPStatus()
	message := appErr.Message
	if status >= http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("code", string(appErr.Code)),
			zap.Error(err),
		)
		message = genericFailure
	}

	JSON(w, status, Envelope{
		Success: false,
		Message: message,
		Code:    appErr.Code,
		Errors:  appErr.Fields,
	})
}
