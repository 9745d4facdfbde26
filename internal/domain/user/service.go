// internal/domain/user/service.go
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/evermore-storefront/internal/config"
	"github.com/your-org/evermore-storefront/internal/pkg/auth"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPasswordMismatch   = errors.New("passwords do not match")
)

const (
	guestEmail = "guest@example.com"
	guestName  = "Guest User"
)

// Service is the mocked account service: one demo account, guest sign-in
// and a registration that always succeeds
type Service struct {
	demo            config.DemoConfig
	passwordManager *auth.PasswordManager
	jwtManager      *auth.JWTManager
	log             *logrus.Logger
}

// NewService creates a new user service
func NewService(cfg *config.Config, log *logrus.Logger) *Service {
	if cfg.Demo.PasswordHash == "" {
		log.Warn("DEMO_PASSWORD_HASH is not set, demo login is disabled")
	}
	return &Service{
		demo:            cfg.Demo,
		passwordManager: auth.NewPasswordManager(cfg.Security.BcryptCost),
		jwtManager:      auth.NewJWTManager(cfg),
		log:             log,
	}
}

// RegisterRequest represents user registration data
type RegisterRequest struct {
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
	Name            string `json:"name" binding:"required"`
	LastName        string `json:"last_name"`
}

// LoginRequest represents user login data
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User        *User  `json:"user"`
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Login signs in the demo account after the configured delay
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	if !strings.EqualFold(req.Email, s.demo.Email) || s.demo.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := s.passwordManager.VerifyPassword(req.Password, s.demo.PasswordHash); err != nil {
		s.log.WithField("email", req.Email).Info("Rejected demo login")
		return nil, ErrInvalidCredentials
	}

	return s.issue(&User{
		Email:    s.demo.Email,
		Name:     s.demo.Name,
		LastName: s.demo.LastName,
	})
}

// Register accepts any well-formed registration without signing the user in
func (s *Service) Register(ctx context.Context, req *RegisterRequest) error {
	if req.Password != req.ConfirmPassword {
		return ErrPasswordMismatch
	}
	if err := s.passwordManager.ValidatePassword(req.Password); err != nil {
		return err
	}
	if err := s.wait(ctx); err != nil {
		return err
	}

	s.log.WithField("email", req.Email).Info("Registration accepted")
	return nil
}

// LoginAsGuest signs in the shared guest identity
func (s *Service) LoginAsGuest() (*AuthResponse, error) {
	return s.issue(&User{
		Email:   guestEmail,
		Name:    guestName,
		IsGuest: true,
	})
}

// Logout ends a session. Tokens are stateless, so the client drops its copy.
func (s *Service) Logout(claims *auth.Claims) {
	s.log.WithField("email", claims.Email).Info("User logged out")
}

// GetProfile returns the user described by claims
func (s *Service) GetProfile(claims *auth.Claims) *User {
	return &User{
		Email:    claims.Email,
		Name:     claims.Name,
		LastName: claims.LastName,
		IsGuest:  claims.IsGuest,
	}
}

func (s *Service) issue(u *User) (*AuthResponse, error) {
	token, err := s.jwtManager.GenerateAccessToken(u.Email, u.Name, u.LastName, u.IsGuest)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &AuthResponse{
		User:        u,
		AccessToken: token,
		ExpiresIn:   int64(s.jwtManager.ExpiresIn().Seconds()),
	}, nil
}

func (s *Service) wait(ctx context.Context) error {
	if s.demo.LoginDelay <= 0 {
		return nil
	}
	timer := time.NewTimer(s.demo.LoginDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
