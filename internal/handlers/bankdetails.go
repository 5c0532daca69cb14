package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/finacore/apiserver/internal/services"
	"github.com/finacore/apiserver/internal/store"
	"github.com/finacore/apiserver/types"
	"github.com/go-chi/chi/v5"
)

// BankDetailsHandler provides HTTP handlers for bank-details reference
// data. Reads are public; writes are admin only.
type BankDetailsHandler struct {
	bankDetailsService *services.BankDetailsService
}

func NewBankDetailsHandler(bankDetailsService *services.BankDetailsService) *BankDetailsHandler {
	return &BankDetailsHandler{bankDetailsService: bankDetailsService}
}

// BankDetailsRouter registers bank-details routes on the given router.
func BankDetailsRouter(r chi.Router, handler *BankDetailsHandler, auth *AuthHandler) {
	r.Get("/", handler.List)
	r.Get("/{detailsID}", handler.Get)
	r.With(auth.RequireAuth, auth.RequireAdmin).Post("/", handler.Create)
	r.With(auth.RequireAuth, auth.RequireAdmin).Put("/{detailsID}", handler.Update)
}

func (h *BankDetailsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.bankDetailsService.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list bank details")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *BankDetailsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "detailsID")

	details, err := h.bankDetailsService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "bank details not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch bank details")
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (h *BankDetailsHandler) Create(w http.ResponseWriter, r *http.Request) {
	details, ok := decodeBankDetails(w, r)
	if !ok {
		return
	}

	created, err := h.bankDetailsService.Create(r.Context(), details)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create bank details")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *BankDetailsHandler) Update(w http.ResponseWriter, r *http.Request) {
	details, ok := decodeBankDetails(w, r)
	if !ok {
		return
	}
	details.ID = chi.URLParam(r, "detailsID")

	updated, err := h.bankDetailsService.Update(r.Context(), details)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "bank details not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update bank details")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func decodeBankDetails(w http.ResponseWriter, r *http.Request) (types.BankDetails, bool) {
	var details types.BankDetails
	if err := json.NewDecoder(r.Body).Decode(&details); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return types.BankDetails{}, false
	}
	if strings.TrimSpace(details.AccountName) == "" || strings.TrimSpace(details.AccountNumber) == "" {
		writeError(w, http.StatusBadRequest, "account name and number are required")
		return types.BankDetails{}, false
	}
	return details, true
}
