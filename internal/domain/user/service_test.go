package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/evermore-storefront/internal/config"
	"github.com/your-org/evermore-storefront/internal/pkg/auth"
	"github.com/your-org/evermore-storefront/internal/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T) (*Service, *config.Config) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("oumaima123$"), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := &config.Config{
		App: config.AppConfig{Name: "evermore-test"},
		JWT: config.JWTConfig{
			Secret:            "test-secret-that-is-at-least-32-characters",
			AccessTokenExpiry: time.Hour,
		},
		Security: config.SecurityConfig{BcryptCost: bcrypt.MinCost},
		Demo: config.DemoConfig{
			Email:        "oumaima.bendahan@avaliance.com",
			Name:         "Oumaima",
			LastName:     "Bendahan",
			PasswordHash: string(hash),
		},
	}
	return NewService(cfg, logger.Discard()), cfg
}

func TestService_Login(t *testing.T) {
	svc, cfg := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Login(ctx, &LoginRequest{Email: "oumaima.bendahan@avaliance.com", Password: "oumaima123$"})
	require.NoError(t, err)
	assert.Equal(t, "Oumaima Bendahan", resp.User.GetFullName())
	assert.False(t, resp.User.IsGuest)
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	claims, err := auth.NewJWTManager(cfg).ValidateAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "oumaima.bendahan@avaliance.com", claims.Email)

	_, err = svc.Login(ctx, &LoginRequest{Email: "oumaima.bendahan@avaliance.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, &LoginRequest{Email: "someone@example.com", Password: "oumaima123$"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_LoginDelayHonoursContext(t *testing.T) {
	svc, _ := newTestService(t)
	svc.demo.LoginDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Login(ctx, &LoginRequest{Email: "oumaima.bendahan@avaliance.com", Password: "oumaima123$"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestService_Register(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	assert.NoError(t, svc.Register(ctx, &RegisterRequest{
		Email: "new@example.com", Password: "secret1", ConfirmPassword: "secret1", Name: "New",
	}))

	err := svc.Register(ctx, &RegisterRequest{
		Email: "new@example.com", Password: "secret1", ConfirmPassword: "secret2", Name: "New",
	})
	assert.ErrorIs(t, err, ErrPasswordMismatch)
}

func TestService_GuestAndProfile(t *testing.T) {
	svc, cfg := newTestService(t)

	resp, err := svc.LoginAsGuest()
	require.NoError(t, err)
	assert.Equal(t, "guest@example.com", resp.User.Email)
	assert.Equal(t, "Guest User", resp.User.Name)
	assert.True(t, resp.User.IsGuest)

	claims, err := auth.NewJWTManager(cfg).ValidateAccessToken(resp.AccessToken)
	require.NoError(t, err)
	profile := svc.GetProfile(claims)
	assert.Equal(t, resp.User, profile)
	assert.Equal(t, "Guest User", profile.GetDisplayName())
}
