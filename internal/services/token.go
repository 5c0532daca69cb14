package services

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenKind discriminates what a signed token is good for. A token issued
// for one purpose is never accepted for another.
type TokenKind string

const (
	TokenSession       TokenKind = "session"
	TokenEmailVerify   TokenKind = "email-verify"
	TokenPasswordReset TokenKind = "password-reset"
)

// ErrInvalidToken is returned when a token is malformed, carries a bad
// signature, or was issued for a different purpose.
var ErrInvalidToken = errors.New("invalid token")

// ErrExpiredToken is returned when a well-formed token is past its expiry.
var ErrExpiredToken = errors.New("expired token")

// TokenClaims is the claim set embedded in every issued token. Session
// tokens additionally carry the role so authenticated requests need no
// directory lookup for authorization. Mutable profile data is deliberately
// not embedded; clients fetch it from the directory.
type TokenClaims struct {
	Kind TokenKind `json:"kind"`
	Role string    `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies signed, expiring tokens.
type TokenService struct {
	secret     []byte
	sessionTTL time.Duration
	verifyTTL  time.Duration
	now        func() time.Time
}

// NewTokenService constructs a TokenService signing with the given secret.
// sessionTTL bounds session tokens; verifyTTL bounds email-verification and
// password-reset tokens.
func NewTokenService(secret string, sessionTTL, verifyTTL time.Duration) *TokenService {
	return &TokenService{
		secret:     []byte(secret),
		sessionTTL: sessionTTL,
		verifyTTL:  verifyTTL,
		now:        time.Now,
	}
}

// IssueSession produces a session token for the given user and role.
func (s *TokenService) IssueSession(userID, role string) (string, error) {
	return s.issue(TokenSession, userID, role, s.sessionTTL)
}

// IssueEmailVerify produces an email-verification token for the given user.
func (s *TokenService) IssueEmailVerify(userID string) (string, error) {
	return s.issue(TokenEmailVerify, userID, "", s.verifyTTL)
}

// IssuePasswordReset produces a password-reset token for the given user.
func (s *TokenService) IssuePasswordReset(userID string) (string, error) {
	return s.issue(TokenPasswordReset, userID, "", s.verifyTTL)
}

func (s *TokenService) issue(kind TokenKind, subject, role string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := TokenClaims{
		Kind: kind,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks signature, expiry and purpose, returning the embedded
// claims. Expiry failures are reported as ErrExpiredToken, everything else
// as ErrInvalidToken, so callers can choose their messaging.
func (s *TokenService) Verify(tokenString string, kind TokenKind) (TokenClaims, error) {
	claims := TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return TokenClaims{}, ErrExpiredToken
		}
		return TokenClaims{}, ErrInvalidToken
	}
	if !token.Valid {
		return TokenClaims{}, ErrInvalidToken
	}
	if claims.Kind != kind {
		return TokenClaims{}, ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return TokenClaims{}, ErrInvalidToken
	}
	return claims, nil
}
