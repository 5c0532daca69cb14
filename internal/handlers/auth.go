package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/finacore/apiserver/internal/services"
	"github.com/finacore/apiserver/internal/store"
	"github.com/finacore/apiserver/types"
	"github.com/go-chi/chi/v5"
)

const minPasswordLength = 8

// AuthHandler provides registration, login and the token-based
// verification/reset endpoints.
type AuthHandler struct {
	authService *services.AuthService
	userService *services.UserService
	tokens      *services.TokenService
	frontendURL string
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(
	authService *services.AuthService,
	userService *services.UserService,
	tokens *services.TokenService,
	frontendURL string,
) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
		tokens:      tokens,
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, handler *AuthHandler) {
	r.Post("/register", handler.Register)
	r.Post("/login", handler.Login)
	r.Post("/logout", handler.Logout)
	r.Get("/verify-email", handler.VerifyEmail)
	r.Post("/request-password-reset", handler.RequestPasswordReset)
	r.Post("/reset-password", handler.ResetPassword)
	r.With(handler.RequireAuth).Get("/profile", handler.Profile)
}

// RequireAuth enforces a session token and injects the principal into
// context.
func (h *AuthHandler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, err := bearerToken(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		claims, err := h.tokens.Verify(tokenString, services.TokenSession)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		principal := Principal{UserID: claims.Subject, Role: claims.Role}
		ctx := context.WithValue(r.Context(), contextPrincipalKey, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects principals without the ADMIN role. It must run
// after RequireAuth.
func (h *AuthHandler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := principalFromContext(r.Context())
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if principal.Role != types.RoleAdmin {
			writeError(w, http.StatusForbidden, "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Register creates a new user account and returns a session token.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if msg, ok := validateCredentials(&req); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	user, token, err := h.authService.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			writeError(w, http.StatusConflict, "user already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to register")
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{Token: token, User: user})
}

// Login verifies credentials and returns a session token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing credentials")
		return
	}

	user, token, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "user not found")
		case errors.Is(err, services.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "invalid credentials")
		default:
			writeError(w, http.StatusInternalServerError, "failed to authenticate")
		}
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{Token: token, User: user})
}

// Logout exists for client symmetry. Session tokens are stateless, so
// there is nothing to clear server-side.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, MessageResponse{Message: "logged out"})
}

// Profile returns the current authenticated user, read fresh from the
// directory rather than from token claims.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	principal, err := principalFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.userService.GetByID(r.Context(), principal.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// VerifyEmail confirms an email-verification token and redirects to the
// frontend with a binary success flag. Failure detail stays in the logs.
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")

	success := true
	if _, err := h.authService.VerifyEmail(r.Context(), token); err != nil {
		success = false
	}
	h.redirectWithSuccess(w, r, "/email-verification", success)
}

// RequestPasswordReset issues a reset token and emails it.
func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req PasswordResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "missing email")
		return
	}

	if err := h.authService.RequestPasswordReset(r.Context(), req.Email); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to send reset email")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "password reset email sent"})
}

// ResetPassword confirms a reset token, stores the new password and
// redirects with a binary success flag.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")

	var req NewPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if len(req.NewPassword) < minPasswordLength {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
		return
	}

	success := true
	if err := h.authService.ResetPassword(r.Context(), token, req.NewPassword); err != nil {
		success = false
	}
	h.redirectWithSuccess(w, r, "/reset-password", success)
}

func (h *AuthHandler) redirectWithSuccess(w http.ResponseWriter, r *http.Request, path string, success bool) {
	target := fmt.Sprintf("%s%s?success=%t", h.frontendURL, path, success)
	http.Redirect(w, r, target, http.StatusFound)
}

func validateCredentials(req *CredentialsRequest) (string, bool) {
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return "invalid email", false
	}
	if len(req.Password) < minPasswordLength {
		return fmt.Sprintf("password must be at least %d characters", minPasswordLength), false
	}
	return "", true
}

type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type PasswordResetRequest struct {
	Email string `json:"email"`
}

type NewPasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

type AuthResponse struct {
	Token string     `json:"token"`
	User  types.User `json:"user"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
