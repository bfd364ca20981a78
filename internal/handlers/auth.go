package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AnshRaj112/contactbook-backend/internal/apperrors"
	"github.com/AnshRaj112/contactbook-backend/internal/middleware"
	"github.com/AnshRaj112/contactbook-backend/internal/models"
	"github.com/AnshRaj112/contactbook-backend/internal/response"
	"github.com/AnshRaj112/contactbook-backend/internal/store"
	"github.com/AnshRaj112/contactbook-backend/pkg/utils"
	"github.com/AnshRaj112/contactbook-backend/pkg/validation"
)

// TokenIssuer signs a token for a user id.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// AuthHandler serves account signup, login and the current-user lookup.
type AuthHandler struct {
	users  store.UserStore
	tokens TokenIssuer
	log    *zap.Logger
	now    func() time.Time
}

func NewAuthHandler(users store.UserStore, tokens TokenIssuer, log *zap.Logger) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, log: log, now: time.Now}
}

// SignupRequest represents the request to create an account
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the request to sign in
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is the account view returned by signup and login.
type AuthResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	Token     string    `json:"token"`
}

var errInvalidCredentials = apperrors.New(apperrors.CodeInvalidCredentials, "Invalid email or password")

// Signup handles POST /api/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if errs := validation.ValidateSignup(req.Name, req.Email, req.Password); !errs.Empty() {
		writeError(w, r, h.log, apperrors.Validation(errs))
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		writeError(w, r, h.log, apperrors.Wrap(apperrors.CodeUnknown, "Failed to process password", err))
		return
	}

	now := h.now().UTC().Truncate(time.Millisecond)
	user := &models.User{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
		Name:      req.Name,
		Email:     req.Email,
		Password:  hash,
	}
	// The unique email index decides races between concurrent signups.
	if err := h.users.Create(r.Context(), user); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	h.respondWithToken(w, r, http.StatusCreated, user, "Account created successfully")
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		errs := validation.FieldErrors{}
		if req.Email == "" {
			errs.Add("email", "Email is required")
		}
		if req.Password == "" {
			errs.Add("password", "Password is required")
		}
		writeError(w, r, h.log, apperrors.Validation(errs))
		return
	}

	user, err := h.users.FindByEmail(r.Context(), req.Email)
	if err != nil {
		// Unknown email and wrong password look the same to the caller.
		if apperrors.CodeOf(err) == apperrors.CodeNotFound {
			err = errInvalidCredentials
		}
		writeError(w, r, h.log, err)
		return
	}

	ok, err := utils.VerifyPassword(req.Password, user.Password)
	if err != nil {
		h.log.Warn("stored password hash unreadable", zap.String("user_id", user.ID), zap.Error(err))
	}
	if !ok {
		writeError(w, r, h.log, errInvalidCredentials)
		return
	}

	h.respondWithToken(w, r, http.StatusOK, user, "Login successful")
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, r, h.log, apperrors.New(apperrors.CodeUnauthenticated, "Not authorized, no token"))
		return
	}

	user, err := h.users.FindByID(r.Context(), userID)
	if err != nil {
		if apperrors.CodeOf(err) == apperrors.CodeNotFound {
			err = apperrors.New(apperrors.CodeUnauthenticated, "Not authorized, user not found")
		}
		writeError(w, r, h.log, err)
		return
	}

	response.Success(w, http.StatusOK, user, "")
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, r *http.Request, status int, user *models.User, message string) {
	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		writeError(w, r, h.log, apperrors.Wrap(apperrors.CodeUnknown, "Failed to issue token", err))
		return
	}

	response.Success(w, status, AuthResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		Token:     token,
	}, message)
}
