package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/AnshRaj112/contactbook-backend/internal/apperrors"
	"github.com/AnshRaj112/contactbook-backend/internal/response"
)

// TokenVerifier resolves a bearer token to a user id.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

type ctxKey int

const userIDKey ctxKey = iota

// UserID returns the id the auth guard attached to ctx.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// WithUserID attaches an authenticated user id to ctx.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// RequireAuth rejects requests without a valid bearer token with 401 and
// otherwise attaches the token's user id to the request context.
func RequireAuth(tokens TokenVerifier, log *zap.Logger) func(http.Handler) http.Handler {
	return guard(tokens, log, false)
}

// RequireAuthWS is RequireAuth for WebSocket upgrades. Browsers cannot set
// headers on a WebSocket handshake, so the token may also arrive in the
// "token" query parameter.
func RequireAuthWS(tokens TokenVerifier, log *zap.Logger) func(http.Handler) http.Handler {
	return guard(tokens, log, true)
}

func guard(tokens TokenVerifier, log *zap.Logger, allowQuery bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := strings.TrimSpace(r.Header.Get("Authorization"))
			if header == "" && allowQuery {
				if q := strings.TrimSpace(r.URL.Query().Get("token")); q != "" {
					header = "Bearer " + q
				}
			}
			if header == "" {
				response.Error(w, r, log, apperrors.New(apperrors.CodeUnauthenticated, "Not authorized, no token"))
				return
			}

			token, ok := bearerToken(header)
			if !ok {
				response.Error(w, r, log, apperrors.New(apperrors.CodeTokenInvalid, "Not authorized, malformed authorization header"))
				return
			}

			userID, err := tokens.Verify(token)
			if err != nil {
				switch apperrors.CodeOf(err) {
				case apperrors.CodeTokenExpired:
					response.Error(w, r, log, apperrors.New(apperrors.CodeTokenExpired, "Not authorized, token expired"))
				default:
					log.Debug("rejected bearer token", zap.String("path", r.URL.Path), zap.Error(err))
					response.Error(w, r, log, apperrors.New(apperrors.CodeTokenInvalid, "Not authorized, token failed"))
				}
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// bearerToken extracts the credential from "Bearer <token>". The scheme is
// case-insensitive.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
