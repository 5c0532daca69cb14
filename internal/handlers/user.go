package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/finacore/apiserver/internal/services"
	"github.com/finacore/apiserver/internal/storage"
	"github.com/finacore/apiserver/internal/store"
	"github.com/finacore/apiserver/types"
	"github.com/go-chi/chi/v5"
)

const (
	maxMultipartMemory = 32 << 20
	maxDocumentBytes   = 16 << 20
)

// documentSlots maps multipart form fields to profile document slots.
var documentSlots = []string{"document1", "document2", "selfie"}

// UserHandler provides HTTP handlers for the user directory and KYC
// documents.
type UserHandler struct {
	userService *services.UserService
	documents   storage.ObjectStorage
}

func NewUserHandler(userService *services.UserService, documents storage.ObjectStorage) *UserHandler {
	return &UserHandler{
		userService: userService,
		documents:   documents,
	}
}

// UserRouter registers user-directory routes on the given router.
func UserRouter(r chi.Router, handler *UserHandler, auth *AuthHandler) {
	r.Post("/", handler.Create)
	r.With(auth.RequireAuth, auth.RequireAdmin).Get("/", handler.List)
	r.With(auth.RequireAuth).Get("/check", handler.Check)
	r.Route("/{userID}", func(r chi.Router) {
		r.Get("/", handler.Get)
		r.With(auth.RequireAuth).Put("/", handler.UpdateProfile)
		r.With(auth.RequireAuth, auth.RequireAdmin).Put("/verify", handler.ToggleVerification)
		r.With(auth.RequireAuth).Post("/documents", handler.UploadDocuments)
		r.With(auth.RequireAuth).Get("/documents/{slot}", handler.GetDocument)
	})
}

// Create registers a user through the directory without issuing a session,
// mirroring the register defaults.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if msg, ok := validateCredentials(&req); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	hashed, err := services.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	user, err := h.userService.Create(r.Context(), req.Email, hashed)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			writeError(w, http.StatusConflict, "user already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// List returns all users newest first. Admin only.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// Check echoes the authenticated principal.
func (h *UserHandler) Check(w http.ResponseWriter, r *http.Request) {
	principal, err := principalFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"id":   principal.UserID,
		"role": principal.Role,
	})
}

// Get returns a single user by id.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "userID")

	user, err := h.userService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateProfile applies the narrow profile-update shape. Users may update
// only themselves; admins may update anyone. Role, balance and
// verification flags are not reachable from here.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "userID")
	if !h.authorizeSelfOrAdmin(w, r, id) {
		return
	}

	var update types.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), id, update)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// ToggleVerification sets the admin-asserted KYC flag.
func (h *UserHandler) ToggleVerification(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "userID")

	var req VerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	user, err := h.userService.SetVerified(r.Context(), id, req.IsVerified)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update verification status")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UploadDocuments accepts a multipart form with any of the fields
// document1, document2 and selfie, stores each file in object storage and
// records the keys on the profile.
func (h *UserHandler) UploadDocuments(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "userID")
	if !h.authorizeSelfOrAdmin(w, r, id) {
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	keys := make(map[string]string, len(documentSlots))
	uploaded := false
	for _, slot := range documentSlots {
		file, header, err := r.FormFile(slot)
		if err != nil {
			if errors.Is(err, http.ErrMissingFile) {
				continue
			}
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid file for %s", slot))
			return
		}
		key, err := h.storeDocument(r, id, slot, file, header)
		file.Close()
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to store %s", slot))
			return
		}
		keys[slot] = key
		uploaded = true
	}
	if !uploaded {
		writeError(w, http.StatusBadRequest, "no documents provided")
		return
	}

	user, err := h.userService.SetDocumentKeys(r.Context(), id, keys["document1"], keys["document2"], keys["selfie"])
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to record documents")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) storeDocument(r *http.Request, userID, slot string, file multipart.File, header *multipart.FileHeader) (string, error) {
	if header.Size > maxDocumentBytes {
		return "", fmt.Errorf("document %s exceeds %d bytes", slot, maxDocumentBytes)
	}
	contentType := header.Header.Get("Content-Type")
	key := storage.DocumentKey(userID, slot)
	if err := h.documents.Put(r.Context(), key, file, header.Size, contentType); err != nil {
		return "", err
	}
	return key, nil
}

// GetDocument streams a stored KYC document back to the caller.
func (h *UserHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "userID")
	slot := chi.URLParam(r, "slot")
	if !h.authorizeSelfOrAdmin(w, r, id) {
		return
	}
	if !validSlot(slot) {
		writeError(w, http.StatusNotFound, "unknown document slot")
		return
	}

	reader, err := h.documents.Get(r.Context(), storage.DocumentKey(id, slot))
	if err != nil {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, reader)
}

func (h *UserHandler) authorizeSelfOrAdmin(w http.ResponseWriter, r *http.Request, userID string) bool {
	principal, err := principalFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return false
	}
	if principal.UserID != userID && principal.Role != types.RoleAdmin {
		writeError(w, http.StatusForbidden, "forbidden")
		return false
	}
	return true
}

func validSlot(slot string) bool {
	for _, known := range documentSlots {
		if strings.EqualFold(slot, known) {
			return true
		}
	}
	return false
}

type VerificationRequest struct {
	IsVerified bool `json:"isVerif"`
}
