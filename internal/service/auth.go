package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/brainlyapp/brainly-server/internal/auth"
	"github.com/brainlyapp/brainly-server/internal/domain"
	domainerrors "github.com/brainlyapp/brainly-server/internal/errors"
	"github.com/brainlyapp/brainly-server/internal/id"
	"github.com/brainlyapp/brainly-server/internal/store"
	"github.com/brainlyapp/brainly-server/internal/validation"
)

// AuthService handles signup, signin and bearer token verification.
type AuthService struct {
	store        store.Store
	tokenService *auth.TokenService
	validator    *validation.Validator
	logger       *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	store store.Store,
	tokenService *auth.TokenService,
	validator *validation.Validator,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		store:        store,
		tokenService: tokenService,
		validator:    validator,
		logger:       logger,
	}
}

// SignupRequest contains new account credentials.
type SignupRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Password string `json:"password" validate:"required,min=8,max=20,strong_password"`
}

// SigninRequest contains credentials for an existing account.
type SigninRequest struct {
	Username string `json:"username" validate:"required,max=32"`
	Password string `json:"password" validate:"required,max=128"`
}

// Signup creates a user. Usernames are unique and case-sensitive.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*domain.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, domainerrors.Internal("failed to create user").WithCause(err)
	}

	userID, err := id.Generate(id.PrefixUser)
	if err != nil {
		return nil, domainerrors.Internal("failed to create user").WithCause(err)
	}

	user := &domain.User{
		Record:       domain.Record{ID: userID},
		Username:     req.Username,
		PasswordHash: passwordHash,
	}
	user.InitTimestamps()

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("username already taken")
		}
		s.logger.Error("failed to create user", "username", req.Username, "error", err)
		return nil, domainerrors.Internal("failed to create user").WithCause(err)
	}

	s.logger.Info("user signed up", "user_id", userID, "username", user.Username)

	return user, nil
}

// Signin checks credentials and returns a bearer token.
// Unknown usernames and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Signin(ctx context.Context, req SigninRequest) (string, *domain.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return "", nil, err
	}

	invalid := domainerrors.InvalidCredentials("invalid username or password")

	user, err := s.store.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Equalize timing with the wrong-password path.
			auth.VerifyDummy(req.Password)
			return "", nil, invalid
		}
		return "", nil, domainerrors.Internal("failed to sign in").WithCause(err)
	}

	ok, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil {
		s.logger.Error("failed to verify password", "user_id", user.ID, "error", err)
		return "", nil, domainerrors.Internal("failed to sign in").WithCause(err)
	}
	if !ok {
		s.logger.Info("signin failed", "username", req.Username)
		return "", nil, invalid
	}

	token, err := s.tokenService.GenerateAccessToken(user)
	if err != nil {
		return "", nil, domainerrors.Internal("failed to sign in").WithCause(err)
	}

	s.logger.Info("user signed in", "user_id", user.ID)

	return token, user, nil
}

// VerifyToken checks a bearer token and returns its claims.
func (s *AuthService) VerifyToken(_ context.Context, token string) (*auth.AccessClaims, error) {
	if token == "" {
		return nil, domainerrors.Unauthorized("missing token")
	}

	claims, err := s.tokenService.VerifyAccessToken(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, domainerrors.TokenExpired("token expired")
		}
		return nil, domainerrors.Unauthorized("invalid token").WithCause(err)
	}
	return claims, nil
}
