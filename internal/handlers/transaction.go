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
	"github.com/shopspring/decimal"
)

// TransactionHandler provides HTTP handlers for the deposit ledger.
type TransactionHandler struct {
	transactionService *services.TransactionService
}

func NewTransactionHandler(transactionService *services.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// TransactionRouter registers transaction routes on the given router. All
// routes require authentication; the status update is admin only.
func TransactionRouter(r chi.Router, handler *TransactionHandler, auth *AuthHandler) {
	r.Use(auth.RequireAuth)
	r.Post("/", handler.Create)
	r.Get("/", handler.List)
	r.With(auth.RequireAdmin).Patch("/update", handler.UpdateStatus)
}

// Create records a deposit request. Non-admin callers may only create
// transactions for themselves.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, err := principalFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		userID = principal.UserID
	}
	if userID != principal.UserID && principal.Role != types.RoleAdmin {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	tx, err := h.transactionService.Create(r.Context(), userID, req.Amount)
	if err != nil {
		if errors.Is(err, services.ErrInvalidAmount) {
			writeError(w, http.StatusBadRequest, "amount must be positive")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create transaction")
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

// UpdateStatus settles or cancels a PENDING transaction. Admin only.
func (h *TransactionHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateTransactionStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	tx, err := h.transactionService.UpdateStatus(r.Context(), req.TransactionID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidStatus):
			writeError(w, http.StatusBadRequest, "status must be COMPLETE or CANCELLED")
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "transaction not found")
		case errors.Is(err, store.ErrInvalidTransition):
			writeError(w, http.StatusConflict, "transaction already settled")
		default:
			writeError(w, http.StatusInternalServerError, "failed to update transaction")
		}
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

// List returns all transactions for admins and the caller's own otherwise,
// newest first.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, err := principalFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var txs []types.Transaction
	if principal.Role == types.RoleAdmin {
		txs, err = h.transactionService.List(r.Context())
	} else {
		txs, err = h.transactionService.ListByUser(r.Context(), principal.UserID)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

type CreateTransactionRequest struct {
	UserID string          `json:"userId"`
	Amount decimal.Decimal `json:"amount"`
}

type UpdateTransactionStatusRequest struct {
	TransactionID string `json:"transactionId"`
	Status        string `json:"transactionStatus"`
}
