package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shelfsocial/shelfsocial-server/internal/auth"
	"github.com/shelfsocial/shelfsocial-server/internal/domain"
	domainerrors "github.com/shelfsocial/shelfsocial-server/internal/errors"
	"github.com/shelfsocial/shelfsocial-server/internal/id"
	"github.com/shelfsocial/shelfsocial-server/internal/store"
)

// RegisterRequest contains the fields for creating an account.
type RegisterRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=30,username"`
	Email       string `json:"email" validate:"required,email,max=254"`
	Password    string `json:"password" validate:"required,min=6,max=1024"`
	DisplayName string `json:"display_name" validate:"max=100"`
}

// LoginRequest contains login credentials. Login is a username or an email.
type LoginRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	User        *domain.User `json:"user"`
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int          `json:"expires_in"`
}

// UpdateProfileRequest changes the caller's display name.
type UpdateProfileRequest struct {
	DisplayName string `json:"display_name" validate:"required,notblank,max=100"`
}

// AuthService handles accounts and resolves bearer tokens to identities.
type AuthService struct {
	store        store.Store
	tokenService *auth.TokenService
	hasher       *auth.PasswordHasher
	logger       *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	store store.Store,
	tokenService *auth.TokenService,
	hasher *auth.PasswordHasher,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		store:        store,
		tokenService: tokenService,
		hasher:       hasher,
		logger:       logger,
	}
}

// Register creates an account and signs the new user in.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userID, err := id.Generate(id.PrefixUser)
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	user := &domain.User{
		Record:       domain.Record{ID: userID},
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		DisplayName:  req.DisplayName,
	}
	if user.DisplayName == "" {
		user.DisplayName = user.Username
	}
	user.InitTimestamps()

	if err := s.store.CreateUser(ctx, user); err != nil {
		var se *store.Error
		if errors.Is(err, store.ErrAlreadyExists) && errors.As(err, &se) {
			return nil, domainerrors.AlreadyExists(se.Message)
		}
		return nil, translate(err, "user not found")
	}

	s.logger.Info("user registered", "user_id", user.ID, "username", user.Username)

	return s.issue(user)
}

// Login verifies credentials. Unknown users and wrong passwords fail the same way.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByLogin(ctx, req.Login)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Debug("login for unknown user", "login", req.Login)
			return nil, domainerrors.InvalidCredentials("invalid login or password")
		}
		return nil, translate(err, "user not found")
	}

	if !s.hasher.Verify(user.PasswordHash, req.Password) {
		s.logger.Info("failed login", "user_id", user.ID)
		return nil, domainerrors.InvalidCredentials("invalid login or password")
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return s.issue(user)
}

// Authenticate resolves a bearer token to an identity. The token must be valid
// and its user must still exist.
func (s *AuthService) Authenticate(ctx context.Context, token string) (domain.Identity, error) {
	claims, err := s.tokenService.VerifyAccessToken(token)
	if err != nil {
		return domain.Anonymous(), domainerrors.Unauthorized("invalid or expired token").WithCause(err)
	}

	user, err := s.store.GetUser(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Anonymous(), domainerrors.Unauthorized("user no longer exists")
		}
		return domain.Anonymous(), translate(err, "user not found")
	}
	return domain.Authenticated(user), nil
}

// Me returns the authenticated user.
func (s *AuthService) Me(_ context.Context, identity domain.Identity) (*domain.User, error) {
	return requireUser(identity)
}

// UpdateProfile changes the caller's display name.
func (s *AuthService) UpdateProfile(ctx context.Context, identity domain.Identity, req UpdateProfileRequest) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	current, err := requireUser(identity)
	if err != nil {
		return nil, err
	}

	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	updated := *current
	updated.DisplayName = req.DisplayName
	updated.Touch()
	if err := s.store.UpdateUser(ctx, &updated); err != nil {
		return nil, translate(err, "user not found")
	}

	s.logger.Info("profile updated", "user_id", updated.ID)
	return &updated, nil
}

func (s *AuthService) issue(user *domain.User) (*AuthResponse, error) {
	token, err := s.tokenService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	return &AuthResponse{
		User:        user,
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.tokenService.AccessTokenDuration().Seconds()),
	}, nil
}
