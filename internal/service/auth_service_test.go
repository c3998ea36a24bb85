package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/gulfassure/quoting-api/internal/auth"
	"github.com/gulfassure/quoting-api/internal/config"
	"github.com/gulfassure/quoting-api/internal/domain"
	"github.com/gulfassure/quoting-api/internal/repository"
	"github.com/gulfassure/quoting-api/internal/service"
	"github.com/gulfassure/quoting-api/internal/testutil"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupAuthService(t *testing.T) (*service.AuthService, *repository.UserRepository, *auth.TokenManager) {
	db := testutil.SetupCleanTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestData(t, db) })

	tokens := auth.NewTokenManager(&config.AuthConfig{
		JWTSecret:       "test-secret-key",
		Issuer:          "gulfassure-quoting",
		TokenTTLMinutes: 60,
	})
	userRepo := repository.NewUserRepository(db)
	authSvc := service.NewAuthService(userRepo, tokens, zap.NewNop())
	return authSvc, userRepo, tokens
}

func createUser(t *testing.T, repo *repository.UserRepository, username, password string, roles []string, active bool) *domain.User {
	t.Helper()
	hash, err := service.HashPassword(password)
	require.NoError(t, err)

	user := &domain.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
		DisplayName:  "Test User",
		Roles:        pq.StringArray(roles),
		IsActive:     active,
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestAuthService_Login(t *testing.T) {
	authSvc, userRepo, tokens := setupAuthService(t)
	ctx := context.Background()

	user := createUser(t, userRepo, "layla.ahmed", "correct horse", []string{"junior_agent", "credit_control"}, true)

	t.Run("valid credentials", func(t *testing.T) {
		resp, err := authSvc.Login(ctx, &domain.LoginRequest{
			Username: "layla.ahmed",
			Password: "correct horse",
		})
		require.NoError(t, err)

		assert.Equal(t, user.ID, resp.UserID)
		assert.Equal(t, "layla.ahmed", resp.Username)
		assert.Equal(t, domain.RoleCreditControl, resp.ActiveRole)
		assert.NotEmpty(t, resp.ExpiresAt)

		userCtx, err := tokens.ValidateToken(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, userCtx.UserID)
		assert.Equal(t, domain.RoleCreditControl, userCtx.ActiveRole)
	})

	t.Run("records the login time", func(t *testing.T) {
		reloaded, err := userRepo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.NotNil(t, reloaded.LastLoginAt)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := authSvc.Login(ctx, &domain.LoginRequest{
			Username: "layla.ahmed",
			Password: "wrong horse",
		})
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("unknown username", func(t *testing.T) {
		_, err := authSvc.Login(ctx, &domain.LoginRequest{
			Username: "nobody",
			Password: "whatever",
		})
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("inactive user", func(t *testing.T) {
		createUser(t, userRepo, "former.employee", "still remembers", []string{"junior_agent"}, false)

		_, err := authSvc.Login(ctx, &domain.LoginRequest{
			Username: "former.employee",
			Password: "still remembers",
		})
		assert.ErrorIs(t, err, service.ErrUserInactive)
	})
}

func TestHashPassword(t *testing.T) {
	hash, err := service.HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	// Hashing is salted, so two hashes of the same password differ.
	other, err := service.HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other)
}
