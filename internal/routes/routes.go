package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/AnshRaj112/contactbook-backend/internal/handlers"
	"github.com/AnshRaj112/contactbook-backend/internal/middleware"
	"github.com/AnshRaj112/contactbook-backend/internal/response"
)

// Deps are the handlers and checks the router is assembled from.
type Deps struct {
	Auth     *handlers.AuthHandler
	Contacts *handlers.ContactHandler
	Feed     *handlers.ContactFeed
	Tokens   middleware.TokenVerifier
	// Ready reports whether backing stores are reachable. Nil means always ready.
	Ready func(ctx context.Context) error
	Log   *zap.Logger
}

func SetupRoutes(r chi.Router, d Deps) {
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Get("/ready", readiness(d.Ready, d.Log))

	// Public auth routes
	r.Post("/api/auth/signup", d.Auth.Signup)
	r.Post("/api/auth/login", d.Auth.Login)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(d.Tokens, d.Log))

		r.Get("/api/auth/me", d.Auth.Me)

		r.Route("/api/contacts", func(r chi.Router) {
			r.Post("/", d.Contacts.Create)
			r.Get("/", d.Contacts.List)
			r.Delete("/{id}", d.Contacts.Delete)
		})
	})

	if d.Feed != nil {
		r.With(middleware.RequireAuthWS(d.Tokens, d.Log)).Get("/ws/contacts", d.Feed.ServeHTTP)
	}
}

func readiness(check func(ctx context.Context) error, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				log.Warn("readiness check failed", zap.Error(err))
				response.JSON(w, http.StatusServiceUnavailable, response.Envelope{Success: false, Message: "not ready"})
				return
			}
		}
		response.JSON(w, http.StatusOK, response.Envelope{Success: true, Message: "ready"})
	}
}
