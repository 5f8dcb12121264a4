package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bloghq/blog-backend/internal/storage"
)

func newTestService(t *testing.T) (*Service, *Tokens, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	tokens := NewTokens(testKey, "blog-api", "blog-clients", time.Hour, nil)
	return NewService(store, tokens, zap.NewNop().Sugar()), tokens, store
}

func TestService_Register(t *testing.T) {
	svc, tokens, _ := newTestService(t)

	result, err := svc.Register(context.Background(), "Ada", "ada@example.com", "hunter22")
	require.NoError(t, err)
	assert.NotZero(t, result.User.ID)
	assert.Equal(t, 1, result.User.Active)
	assert.Equal(t, 3600, result.ExpiresIn)

	// Never the raw password.
	assert.NotEqual(t, "hunter22", result.User.Password)
	assert.True(t, VerifyPassword("hunter22", result.User.Password))

	claims, err := tokens.Verify(result.Token)
	require.NoError(t, err)
	id, err := ResolveUserID(claims)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, id)
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Register(context.Background(), "Ada", "ada@example.com", "hunter22")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "Imposter", "ada@example.com", "other")
	assert.ErrorIs(t, err, storage.ErrEmailTaken)
}

func TestService_Login(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Register(context.Background(), "Ada", "ada@example.com", "hunter22")
	require.NoError(t, err)

	result, err := svc.Login(context.Background(), "ada@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", result.User.Email)
	assert.NotEmpty(t, result.Token)
}

func TestService_Login_Indistinguishable(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Register(context.Background(), "Ada", "ada@example.com", "hunter22")
	require.NoError(t, err)

	// Wrong password and unknown email fail identically; no account
	// enumeration through error shape.
	_, wrongPassword := svc.Login(context.Background(), "ada@example.com", "nope")
	_, unknownEmail := svc.Login(context.Background(), "ghost@example.com", "nope")

	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}
