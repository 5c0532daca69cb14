package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/finacore/apiserver/internal/services"
	"github.com/finacore/apiserver/internal/store"
	"github.com/finacore/apiserver/types"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// fakeUserRepo is an in-memory user store for handler tests.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]types.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]types.User)}
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (f *fakeUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return types.User{}, store.ErrDuplicateEmail
		}
	}
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) UpdateProfile(_ context.Context, id string, update types.ProfileUpdate) (types.User, error) {
	return f.mutate(id, func(user *types.User) {
		if update.FirstName != nil {
			user.FirstName = *update.FirstName
		}
		if update.LastName != nil {
			user.LastName = *update.LastName
		}
		if update.Country != nil {
			user.Country = *update.Country
		}
		if update.DocumentType != nil {
			user.DocumentType = *update.DocumentType
		}
	})
}

func (f *fakeUserRepo) SetEmailVerified(_ context.Context, id string) (types.User, error) {
	return f.mutate(id, func(user *types.User) { user.IsEmailVerified = true })
}

func (f *fakeUserRepo) SetWallet(_ context.Context, id, address string) (types.User, error) {
	return f.mutate(id, func(user *types.User) { user.Wallet = address })
}

func (f *fakeUserRepo) SetVerified(_ context.Context, id string, verified bool) (types.User, error) {
	return f.mutate(id, func(user *types.User) { user.IsVerified = verified })
}

func (f *fakeUserRepo) UpdatePasswordHash(_ context.Context, id, passwordHash string) error {
	_, err := f.mutate(id, func(user *types.User) { user.PasswordHash = passwordHash })
	return err
}

func (f *fakeUserRepo) SetDocumentKeys(_ context.Context, id, photo1Key, photo2Key, selfieKey string) (types.User, error) {
	return f.mutate(id, func(user *types.User) {
		if photo1Key != "" {
			user.DocumentPhoto1Key = photo1Key
		}
		if photo2Key != "" {
			user.DocumentPhoto2Key = photo2Key
		}
		if selfieKey != "" {
			user.SelfieKey = selfieKey
		}
	})
}

func (f *fakeUserRepo) List(_ context.Context) ([]types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]types.User, 0, len(f.users))
	for _, user := range f.users {
		out = append(out, user)
	}
	return out, nil
}

func (f *fakeUserRepo) mutate(id string, apply func(*types.User)) (types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	apply(&user)
	f.users[id] = user
	return user, nil
}

func (f *fakeUserRepo) setRole(id, role string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user := f.users[id]
	user.Role = role
	f.users[id] = user
}

// fakeTransactionRepo mirrors the SQL ledger's settlement semantics.
type fakeTransactionRepo struct {
	mu  sync.Mutex
	txs map[string]types.Transaction
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{txs: make(map[string]types.Transaction)}
}

func (f *fakeTransactionRepo) Create(_ context.Context, tx types.Transaction) (types.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.txs[tx.ID] = tx
	return tx, nil
}

func (f *fakeTransactionRepo) Get(_ context.Context, id string) (types.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tx, ok := f.txs[id]
	if !ok {
		return types.Transaction{}, store.ErrNotFound
	}
	return tx, nil
}

func (f *fakeTransactionRepo) UpdateStatus(_ context.Context, id, newStatus string) (types.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tx, ok := f.txs[id]
	if !ok {
		return types.Transaction{}, store.ErrNotFound
	}
	if tx.Status != types.TransactionPending {
		return types.Transaction{}, store.ErrInvalidTransition
	}
	tx.Status = newStatus
	f.txs[id] = tx
	return tx, nil
}

func (f *fakeTransactionRepo) List(_ context.Context) ([]types.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]types.Transaction, 0, len(f.txs))
	for _, tx := range f.txs {
		out = append(out, tx)
	}
	return out, nil
}

func (f *fakeTransactionRepo) ListByUser(_ context.Context, userID string) ([]types.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []types.Transaction
	for _, tx := range f.txs {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	return out, nil
}

// memStorage is an in-memory ObjectStorage for document tests.
type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemStorage() *memStorage {
	return &memStorage{objects: make(map[string][]byte)}
}

func (m *memStorage) EnsureBucket(context.Context) error { return nil }

func (m *memStorage) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

func (m *memStorage) Get(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, errors.New("object not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memStorage) Bucket() string { return "test-bucket" }

type noopWallet struct{}

func (noopWallet) GenerateAddress(context.Context, string) (string, error) {
	return "TXtestaddr", nil
}

type noopNotifier struct{}

func (noopNotifier) SendEmailVerification(context.Context, string, string) error { return nil }
func (noopNotifier) SendPasswordReset(context.Context, string, string) error     { return nil }

const testFrontendURL = "https://app.example.com"

type testServer struct {
	router  *chi.Mux
	users   *fakeUserRepo
	txs     *fakeTransactionRepo
	storage *memStorage
	tokens  *services.TokenService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	users := newFakeUserRepo()
	txs := newFakeTransactionRepo()
	documents := newMemStorage()

	userSvc := services.NewUserService(users)
	txSvc := services.NewTransactionService(txs)
	tokens := services.NewTokenService("handler-test-secret", time.Hour, 24*time.Hour)
	authSvc := services.NewAuthService(userSvc, tokens, noopWallet{}, noopNotifier{}, "USDTTRC", time.Second, zerolog.Nop())

	authHandler := NewAuthHandler(authSvc, userSvc, tokens, testFrontendURL)
	userHandler := NewUserHandler(userSvc, documents)
	txHandler := NewTransactionHandler(txSvc)

	router := chi.NewRouter()
	router.Route("/auth", func(r chi.Router) { AuthRouter(r, authHandler) })
	router.Route("/user", func(r chi.Router) { UserRouter(r, userHandler, authHandler) })
	router.Route("/transactions", func(r chi.Router) { TransactionRouter(r, txHandler, authHandler) })

	return &testServer{
		router:  router,
		users:   users,
		txs:     txs,
		storage: documents,
		tokens:  tokens,
	}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

// register creates an account through the HTTP surface and returns the user
// plus session token.
func (ts *testServer) register(t *testing.T, email, password string) (types.User, string) {
	t.Helper()

	rec := ts.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.User, resp.Token
}

// registerAdmin registers a user, promotes it and re-issues a session token
// carrying the admin role.
func (ts *testServer) registerAdmin(t *testing.T, email, password string) (types.User, string) {
	t.Helper()

	user, _ := ts.register(t, email, password)
	ts.users.setRole(user.ID, types.RoleAdmin)

	token, err := ts.tokens.IssueSession(user.ID, types.RoleAdmin)
	require.NoError(t, err)
	user.Role = types.RoleAdmin
	return user, token
}
