package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService(now time.Time) *TokenService {
	s := NewTokenService("test-secret", time.Hour, 24*time.Hour)
	s.now = func() time.Time { return now }
	return s
}

func TestTokenRoundTrip(t *testing.T) {
	s := newTestTokenService(time.Now())

	token, err := s.IssueSession("user-1", "ADMIN")
	require.NoError(t, err)

	claims, err := s.Verify(token, TokenSession)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "ADMIN", claims.Role)
	assert.Equal(t, TokenSession, claims.Kind)
}

func TestTokenKindMismatch(t *testing.T) {
	s := newTestTokenService(time.Now())

	token, err := s.IssueEmailVerify("user-1")
	require.NoError(t, err)

	_, err = s.Verify(token, TokenSession)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = s.Verify(token, TokenPasswordReset)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = s.Verify(token, TokenEmailVerify)
	assert.NoError(t, err)
}

func TestTokenExpiryBoundary(t *testing.T) {
	issuedAt := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
	s := newTestTokenService(issuedAt)

	token, err := s.IssueSession("user-1", "USER")
	require.NoError(t, err)

	s.now = func() time.Time { return issuedAt.Add(time.Hour - time.Second) }
	_, err = s.Verify(token, TokenSession)
	assert.NoError(t, err)

	s.now = func() time.Time { return issuedAt.Add(time.Hour + time.Second) }
	_, err = s.Verify(token, TokenSession)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenVerifyTTLCoversResetTokens(t *testing.T) {
	issuedAt := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
	s := newTestTokenService(issuedAt)

	token, err := s.IssuePasswordReset("user-1")
	require.NoError(t, err)

	s.now = func() time.Time { return issuedAt.Add(23 * time.Hour) }
	claims, err := s.Verify(token, TokenPasswordReset)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Empty(t, claims.Role)

	s.now = func() time.Time { return issuedAt.Add(25 * time.Hour) }
	_, err = s.Verify(token, TokenPasswordReset)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenTamperedSignature(t *testing.T) {
	s := newTestTokenService(time.Now())

	token, err := s.IssueSession("user-1", "USER")
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = s.Verify(tampered, TokenSession)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenWrongSecret(t *testing.T) {
	s := newTestTokenService(time.Now())
	other := NewTokenService("other-secret", time.Hour, 24*time.Hour)

	token, err := other.IssueSession("user-1", "USER")
	require.NoError(t, err)

	_, err = s.Verify(token, TokenSession)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenGarbage(t *testing.T) {
	s := newTestTokenService(time.Now())

	_, err := s.Verify("not-a-token", TokenSession)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = s.Verify("", TokenSession)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
