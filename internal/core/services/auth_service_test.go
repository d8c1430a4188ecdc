package services

import (
	"context"
	"testing"
	"time"

	"teleconsult/internal/core/domain"
	"teleconsult/internal/infrastructure/repositories/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthService() AuthService {
	return NewAuthService("test-secret", 15*time.Minute, 24*time.Hour, memory.NewMemoryUserRepository())
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	svc := newTestAuthService()
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice@example.com", "password123", "Alice", "Adams", domain.RolePatient)
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, domain.RolePatient, user.Role)
	// The password is stored hashed, never in the clear.
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "password123", user.PasswordHash)

	got, err := svc.Login(ctx, "alice@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestAuthService_LoginRejectsBadCredentials(t *testing.T) {
	svc := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice@example.com", "password123", "Alice", "Adams", domain.RolePatient)
	require.NoError(t, err)

	_, err = svc.Login(ctx, "alice@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Unknown email reports the same error as a bad password.
	_, err = svc.Login(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_TokenRoundTrip(t *testing.T) {
	svc := newTestAuthService()
	ctx := context.Background()

	user, err := svc.Register(ctx, "bob@example.com", "password123", "Bob", "Brown", domain.RoleDoctor)
	require.NoError(t, err)

	token, err := svc.GenerateToken(user)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "Bob Brown", claims.Name)
	assert.Equal(t, domain.RoleDoctor, claims.Role)
}

func TestAuthService_ValidateTokenRejectsGarbage(t *testing.T) {
	svc := newTestAuthService()

	_, err := svc.ValidateToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_ValidateTokenRejectsWrongSecret(t *testing.T) {
	ctx := context.Background()
	users := memory.NewMemoryUserRepository()

	signer := NewAuthService("secret-a", 15*time.Minute, 24*time.Hour, users)
	verifier := NewAuthService("secret-b", 15*time.Minute, 24*time.Hour, users)

	user, err := signer.Register(ctx, "alice@example.com", "password123", "Alice", "Adams", domain.RolePatient)
	require.NoError(t, err)

	token, err := signer.GenerateToken(user)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_Authenticate(t *testing.T) {
	svc := newTestAuthService()
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice@example.com", "password123", "Alice", "Adams", domain.RolePatient)
	require.NoError(t, err)

	token, err := svc.GenerateToken(user)
	require.NoError(t, err)

	got, err := svc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Authenticate(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_AuthenticateUnknownUser(t *testing.T) {
	ctx := context.Background()

	// Token is valid but the user does not exist in this repository.
	other := NewAuthService("test-secret", 15*time.Minute, 24*time.Hour, memory.NewMemoryUserRepository())
	user, err := other.Register(ctx, "ghost@example.com", "password123", "Ghost", "User", domain.RolePatient)
	require.NoError(t, err)
	token, err := other.GenerateToken(user)
	require.NoError(t, err)

	svc := newTestAuthService()
	_, err = svc.Authenticate(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	svc := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice@example.com", "password123", "Alice", "Adams", domain.RolePatient)
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice@example.com", "password456", "Alice", "Again", domain.RolePatient)
	assert.ErrorIs(t, err, domain.ErrUserExists)
}
