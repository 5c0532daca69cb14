package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/finacore/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionCreateEndpoint(t *testing.T) {
	ts := newTestServer(t)
	user, token := ts.register(t, "depositor@example.com", "password123")

	rec := ts.do(t, http.MethodPost, "/transactions/", token, map[string]any{
		"amount": "150.25",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var tx types.Transaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tx))
	assert.Equal(t, user.ID, tx.UserID)
	assert.Equal(t, types.TransactionPending, tx.Status)
	assert.Equal(t, "150.25", tx.Amount.String())
}

func TestTransactionCreateRequiresAuth(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/transactions/", "", map[string]any{
		"amount": "10",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTransactionCreateRejectsBadAmount(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.register(t, "depositor@example.com", "password123")

	for _, amount := range []string{"0", "-5"} {
		rec := ts.do(t, http.MethodPost, "/transactions/", token, map[string]any{
			"amount": amount,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code, "amount %s", amount)
	}
}

func TestTransactionCreateCrossUserForbidden(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.register(t, "one@example.com", "password123")
	other, _ := ts.register(t, "two@example.com", "password123")

	rec := ts.do(t, http.MethodPost, "/transactions/", token, map[string]any{
		"userId": other.ID,
		"amount": "10",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestTransactionAdminCreatesForAnyUser(t *testing.T) {
	ts := newTestServer(t)
	_, adminToken := ts.registerAdmin(t, "admin@example.com", "password123")
	user, _ := ts.register(t, "customer@example.com", "password123")

	rec := ts.do(t, http.MethodPost, "/transactions/", adminToken, map[string]any{
		"userId": user.ID,
		"amount": "99",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var tx types.Transaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tx))
	assert.Equal(t, user.ID, tx.UserID)
}

func TestTransactionUpdateStatusAdminOnly(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.register(t, "user@example.com", "password123")

	rec := ts.do(t, http.MethodPatch, "/transactions/update", token, map[string]any{
		"transactionId":     "some-id",
		"transactionStatus": types.TransactionComplete,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestTransactionUpdateStatusEndpoint(t *testing.T) {
	ts := newTestServer(t)
	_, adminToken := ts.registerAdmin(t, "admin@example.com", "password123")
	_, userToken := ts.register(t, "user@example.com", "password123")

	rec := ts.do(t, http.MethodPost, "/transactions/", userToken, map[string]any{
		"amount": "50",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var tx types.Transaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tx))

	rec = ts.do(t, http.MethodPatch, "/transactions/update", adminToken, map[string]any{
		"transactionId":     tx.ID,
		"transactionStatus": types.TransactionComplete,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var settled types.Transaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &settled))
	assert.Equal(t, types.TransactionComplete, settled.Status)

	// Terminal states are frozen; a second settlement conflicts.
	rec = ts.do(t, http.MethodPatch, "/transactions/update", adminToken, map[string]any{
		"transactionId":     tx.ID,
		"transactionStatus": types.TransactionCancelled,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestTransactionUpdateStatusErrors(t *testing.T) {
	ts := newTestServer(t)
	_, adminToken := ts.registerAdmin(t, "admin@example.com", "password123")

	rec := ts.do(t, http.MethodPatch, "/transactions/update", adminToken, map[string]any{
		"transactionId":     "missing",
		"transactionStatus": "PENDING",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPatch, "/transactions/update", adminToken, map[string]any{
		"transactionId":     "missing",
		"transactionStatus": types.TransactionComplete,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTransactionListScoping(t *testing.T) {
	ts := newTestServer(t)
	_, adminToken := ts.registerAdmin(t, "admin@example.com", "password123")
	_, aliceToken := ts.register(t, "alice@example.com", "password123")
	_, bobToken := ts.register(t, "bob@example.com", "password123")

	rec := ts.do(t, http.MethodPost, "/transactions/", aliceToken, map[string]any{"amount": "10"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = ts.do(t, http.MethodPost, "/transactions/", bobToken, map[string]any{"amount": "20"})
	require.Equal(t, http.StatusOK, rec.Code)

	var list []types.Transaction

	rec = ts.do(t, http.MethodGet, "/transactions/", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)
	assert.Equal(t, "10", list[0].Amount.String())

	rec = ts.do(t, http.MethodGet, "/transactions/", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 2)
}
