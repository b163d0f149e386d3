package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/invoice-service/internal/config"
	"github.com/spec-kit/invoice-service/internal/domain"
	"github.com/spec-kit/invoice-service/internal/events"
	"github.com/spec-kit/invoice-service/internal/repository"
	"github.com/spec-kit/invoice-service/internal/repository/memory"
)

func newAuthService(store *memory.Store, dispatcher events.Dispatcher) *AuthService {
	return NewAuthService(
		config.AuthConfig{JWTSecret: "test", AccessTokenTTLMinutes: 5, BcryptCost: 4, PasswordResetTTLMinutes: 10},
		AuthDependencies{UserRepo: store.Users(), PasswordResetRepo: store.PasswordResets(), Dispatcher: dispatcher},
	)
}

func TestAuthService(t *testing.T) {
	store := memory.NewStore()
	svc := newAuthService(store, nil)
	ctx := context.Background()

	user, token, _, err := svc.Register(ctx, "Alice", " Alice@Example.com ", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, domain.UserRoleParticipant, user.Role)
	assert.NotEqual(t, "correct-horse", user.PasswordHash)

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.Subject)

	t.Run("duplicate email", func(t *testing.T) {
		_, _, _, err := svc.Register(ctx, "Other", "alice@example.com", "another-pass")
		assertCode(t, err, "DUPLICATE_KEY")
	})

	t.Run("validation", func(t *testing.T) {
		_, _, _, err := svc.Register(ctx, "", "x@example.com", "longenough")
		assertCode(t, err, "VALIDATION_FAILED")
		_, _, _, err = svc.Register(ctx, "X", "not-an-email", "longenough")
		assertCode(t, err, "VALIDATION_FAILED")
		_, _, _, err = svc.Register(ctx, "X", "x@example.com", "short")
		assertCode(t, err, "VALIDATION_FAILED")
	})

	t.Run("login", func(t *testing.T) {
		got, token, _, err := svc.Login(ctx, "alice@example.com", "correct-horse")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		assert.NotEmpty(t, token)

		_, _, _, err = svc.Login(ctx, "alice@example.com", "wrong-password")
		assertCode(t, err, "UNAUTHORIZED")

		_, _, _, err = svc.Login(ctx, "nobody@example.com", "correct-horse")
		assertCode(t, err, "UNAUTHORIZED")
	})

	t.Run("change password", func(t *testing.T) {
		err := svc.ChangePassword(ctx, user.ID, "wrong-password", "brand-new-pass")
		assertCode(t, err, "UNAUTHORIZED")

		require.NoError(t, svc.ChangePassword(ctx, user.ID, "correct-horse", "brand-new-pass"))
		_, _, _, err = svc.Login(ctx, "alice@example.com", "brand-new-pass")
		require.NoError(t, err)
	})
}

func TestAuthService_PasswordReset(t *testing.T) {
	store := memory.NewStore()
	dispatcher := events.NewInMemoryDispatcher()
	var delivered []events.PasswordResetRequestedPayload
	dispatcher.Subscribe(events.EventPasswordResetRequested, func(_ context.Context, e events.Event) error {
		delivered = append(delivered, e.Payload.(events.PasswordResetRequestedPayload))
		return nil
	})
	svc := newAuthService(store, dispatcher)
	ctx := context.Background()

	_, _, _, err := svc.Register(ctx, "Bob", "bob@example.com", "first-password")
	require.NoError(t, err)

	none, err := svc.RequestPasswordReset(ctx, "ghost@example.com")
	require.NoError(t, err)
	assert.Nil(t, none)
	assert.Empty(t, delivered)

	token, err := svc.RequestPasswordReset(ctx, "BOB@example.com")
	require.NoError(t, err)
	require.NotNil(t, token)
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), token.ExpiresAt, 5*time.Second)
	require.Len(t, delivered, 1)
	assert.Equal(t, "bob@example.com", delivered[0].Email)
	assert.Equal(t, token.Token, delivered[0].Token)

	err = svc.ConfirmPasswordReset(ctx, token.Token, "short")
	assertCode(t, err, "VALIDATION_FAILED")

	require.NoError(t, svc.ConfirmPasswordReset(ctx, token.Token, "second-password"))
	_, _, _, err = svc.Login(ctx, "bob@example.com", "second-password")
	require.NoError(t, err)

	err = svc.ConfirmPasswordReset(ctx, token.Token, "third-password")
	assertCode(t, err, "VALIDATION_FAILED")

	err = svc.ConfirmPasswordReset(ctx, "unknown", "third-password")
	assertCode(t, err, "VALIDATION_FAILED")

	expired := &repository.PasswordResetToken{UserID: token.UserID, Token: "old", ExpiresAt: time.Now().Add(-time.Minute)}
	require.NoError(t, store.PasswordResets().Create(ctx, expired))
	err = svc.ConfirmPasswordReset(ctx, "old", "third-password")
	assertCode(t, err, "VALIDATION_FAILED")
}
