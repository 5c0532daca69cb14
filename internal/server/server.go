package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/finacore/apiserver/config"
	"github.com/finacore/apiserver/internal/db"
	"github.com/finacore/apiserver/internal/handlers"
	"github.com/finacore/apiserver/internal/logger"
	"github.com/finacore/apiserver/internal/mailer"
	"github.com/finacore/apiserver/internal/mq"
	"github.com/finacore/apiserver/internal/services"
	"github.com/finacore/apiserver/internal/storage"
	"github.com/finacore/apiserver/internal/store"
	"github.com/finacore/apiserver/internal/wallet"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server wraps the HTTP server, router and shared resources.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	queue      mq.Backend
}

// New constructs a Server with all collaborators wired.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	if strings.TrimSpace(cfg.JWT.Secret) == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	documents, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	if err := documents.EnsureBucket(ctx); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("ensure document bucket: %w", err)
	}

	queue, err := mq.New(ctx, cfg.Queue)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	transactionRepo := store.NewTransactionRepository(dbConn)
	bankDetailsRepo := store.NewBankDetailsRepository(dbConn)

	userService := services.NewUserService(userRepo)
	transactionService := services.NewTransactionService(transactionRepo)
	bankDetailsService := services.NewBankDetailsService(bankDetailsRepo)
	tokenService := services.NewTokenService(cfg.JWT.Secret, cfg.JWT.SessionTTL, cfg.JWT.VerifyTTL)

	smtpMailer := mailer.NewSMTPMailer(cfg.SMTP, cfg.FrontendURL)
	var notifier services.Notifier = smtpMailer
	if queue != nil {
		notifier = mailer.NewQueueNotifier(queue)
	}

	walletClient := wallet.NewClient(cfg.Wallet)

	authService := services.NewAuthService(
		userService,
		tokenService,
		walletClient,
		notifier,
		cfg.Wallet.Currency,
		cfg.Wallet.Timeout,
		logger.New("auth"),
	)

	authHandler := handlers.NewAuthHandler(authService, userService, tokenService, cfg.FrontendURL)
	userHandler := handlers.NewUserHandler(userService, documents)
	transactionHandler := handlers.NewTransactionHandler(transactionService)
	bankDetailsHandler := handlers.NewBankDetailsHandler(bankDetailsService)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, authHandler)
	})
	router.Route("/user", func(r chi.Router) {
		handlers.UserRouter(r, userHandler, authHandler)
	})
	router.Route("/transactions", func(r chi.Router) {
		handlers.TransactionRouter(r, transactionHandler, authHandler)
	})
	router.Route("/bank-details", func(r chi.Router) {
		handlers.BankDetailsRouter(r, bankDetailsHandler, authHandler)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		queue:      queue,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown, closing shared resources.
func (s *Server) Shutdown() error {
	if s.db != nil {
		_ = s.db.Close()
	}
	if s.queue != nil {
		_ = s.queue.Close()
	}
	return s.httpServer.Close()
}
