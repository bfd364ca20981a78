package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/AnshRaj112/contactbook-backend/internal/apperrors"
	"github.com/AnshRaj112/contactbook-backend/internal/response"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 64 << 10

var errBadBody = apperrors.New(apperrors.CodeBadRequest, "Invalid request body")

// writeError is the single place handlers turn an error into a response.
func writeError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	response.Error(w, r, log, err)
}

// decodeJSON reads one JSON object from the request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return apperrors.Wrap(apperrors.CodeBadRequest, errBadBody.Message, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errBadBody
	}
	return nil
}
