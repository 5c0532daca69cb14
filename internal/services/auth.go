package services

import (
	"context"
	"errors"
	"time"

	"github.com/finacore/apiserver/internal/store"
	"github.com/finacore/apiserver/types"
	"github.com/rs/zerolog"
)

// ErrInvalidCredentials is returned on a password mismatch during login.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidOrExpiredToken is the collapsed outward failure for the
// redirect-based verify/reset flows. The underlying cause is logged.
var ErrInvalidOrExpiredToken = errors.New("invalid or expired token")

// ErrCurrencyNotSupported is reported by a WalletProvisioner when the
// requested currency cannot be provisioned.
var ErrCurrencyNotSupported = errors.New("currency not supported")

// WalletProvisioner assigns a custodial deposit address for a currency.
type WalletProvisioner interface {
	GenerateAddress(ctx context.Context, currency string) (string, error)
}

// Notifier delivers account emails. Implementations may deliver inline or
// enqueue for a worker.
type Notifier interface {
	SendEmailVerification(ctx context.Context, email, token string) error
	SendPasswordReset(ctx context.Context, email, token string) error
}

const emailDispatchTimeout = 30 * time.Second

// AuthService composes the token service, credential hashing, the user
// directory and the wallet/notifier boundaries into the registration,
// login, email-verification and password-reset flows.
type AuthService struct {
	users          *UserService
	tokens         *TokenService
	wallet         WalletProvisioner
	notifier       Notifier
	walletCurrency string
	walletTimeout  time.Duration
	log            zerolog.Logger
}

func NewAuthService(
	users *UserService,
	tokens *TokenService,
	wallet WalletProvisioner,
	notifier Notifier,
	walletCurrency string,
	walletTimeout time.Duration,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:          users,
		tokens:         tokens,
		wallet:         wallet,
		notifier:       notifier,
		walletCurrency: walletCurrency,
		walletTimeout:  walletTimeout,
		log:            log,
	}
}

// Register creates a user with the default-value contract, provisions a
// deposit address, issues a session token and dispatches a verification
// email. Wallet provisioning failures are logged and swallowed so a slow or
// unavailable provider never blocks registration; the verification email is
// fire-and-forget for the same reason.
func (s *AuthService) Register(ctx context.Context, email, password string) (types.User, string, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return types.User{}, "", store.ErrDuplicateEmail
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, "", err
	}

	hashed, err := HashPassword(password)
	if err != nil {
		return types.User{}, "", err
	}

	user, err := s.users.Create(ctx, email, hashed)
	if err != nil {
		return types.User{}, "", err
	}

	if address := s.provisionWallet(ctx); address != "" {
		user, err = s.users.SetWallet(ctx, user.ID, address)
		if err != nil {
			return types.User{}, "", err
		}
	}

	sessionToken, err := s.tokens.IssueSession(user.ID, user.Role)
	if err != nil {
		return types.User{}, "", err
	}

	emailToken, err := s.tokens.IssueEmailVerify(user.ID)
	if err != nil {
		return types.User{}, "", err
	}
	go s.dispatchVerification(user.Email, emailToken)

	return user, sessionToken, nil
}

func (s *AuthService) provisionWallet(ctx context.Context) string {
	ctx, cancel := context.WithTimeout(ctx, s.walletTimeout)
	defer cancel()

	address, err := s.wallet.GenerateAddress(ctx, s.walletCurrency)
	if err != nil {
		if errors.Is(err, ErrCurrencyNotSupported) {
			s.log.Info().Str("currency", s.walletCurrency).Msg("wallet currency not supported, skipping provisioning")
		} else {
			s.log.Warn().Err(err).Msg("wallet provisioning failed, registering without deposit address")
		}
		return ""
	}
	return address
}

func (s *AuthService) dispatchVerification(email, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), emailDispatchTimeout)
	defer cancel()

	if err := s.notifier.SendEmailVerification(ctx, email, token); err != nil {
		s.log.Error().Err(err).Str("email", email).Msg("failed to send verification email")
	}
}

// Login verifies credentials and issues a session token. A missing user
// surfaces as store.ErrNotFound, a wrong password as ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (types.User, string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return types.User{}, "", err
	}

	ok, err := VerifyPassword(user.PasswordHash, password)
	if err != nil {
		return types.User{}, "", err
	}
	if !ok {
		return types.User{}, "", ErrInvalidCredentials
	}

	token, err := s.tokens.IssueSession(user.ID, user.Role)
	if err != nil {
		return types.User{}, "", err
	}
	return user, token, nil
}

// VerifyEmail confirms an email-verification token and marks the user
// verified. Replaying a token for an already-verified user is a no-op
// success.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (types.User, error) {
	claims, err := s.tokens.Verify(token, TokenEmailVerify)
	if err != nil {
		s.log.Debug().Err(err).Msg("email verification token rejected")
		return types.User{}, ErrInvalidOrExpiredToken
	}

	user, err := s.users.SetEmailVerified(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrInvalidOrExpiredToken
		}
		return types.User{}, err
	}
	return user, nil
}

// RequestPasswordReset issues a reset token and emails it. It mutates no
// user state.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	token, err := s.tokens.IssuePasswordReset(user.ID)
	if err != nil {
		return err
	}
	return s.notifier.SendPasswordReset(ctx, user.Email, token)
}

// ResetPassword confirms a password-reset token and stores the re-hashed
// password.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	claims, err := s.tokens.Verify(token, TokenPasswordReset)
	if err != nil {
		s.log.Debug().Err(err).Msg("password reset token rejected")
		return ErrInvalidOrExpiredToken
	}

	hashed, err := HashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePasswordHash(ctx, claims.Subject, hashed); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidOrExpiredToken
		}
		return err
	}
	return nil
}
