package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"studio-insight/internal/model"
	"studio-insight/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

type userService struct {
	userRepo repository.UserRepository
	logger   zerolog.Logger
}

// NewUserService creates a new user service.
func NewUserService(userRepo repository.UserRepository, logger zerolog.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		logger:   logger.With().Str("service", "user").Logger(),
	}
}

// Register creates an account. New accounts always get the USER role;
// promotion is a separate admin operation.
func (s *userService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	if req == nil {
		return nil, model.NewValidationError("request body is required")
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, model.NewValidationError("a valid email is required")
	}
	if len(req.Password) < 8 {
		return nil, model.NewValidationError("password must be at least 8 characters")
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, model.NewValidationError("name is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(req.Name),
		Role:         model.RoleUser,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, model.ErrEmailTaken) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("email", email).Msg("failed to create user")
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID.String()).Str("email", email).Msg("user registered")
	return user, nil
}

// GetByID retrieves a user.
func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, model.ErrUserNotFound
	}
	return user, nil
}

// Authenticate verifies an email/password pair. An unknown email and a
// wrong password both return ErrUserNotFound so callers cannot probe
// which accounts exist.
func (s *userService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, model.ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn().Str("email", email).Msg("authentication failed")
		return nil, model.ErrUserNotFound
	}

	return user, nil
}

// SetRole changes a user's role.
func (s *userService) SetRole(ctx context.Context, id uuid.UUID, role model.UserRole) error {
	if !role.Valid() {
		return model.NewValidationError(fmt.Sprintf("unknown role: %s", role))
	}

	updated, err := s.userRepo.UpdateRole(ctx, id, role)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", id.String()).Msg("failed to update role")
		return fmt.Errorf("failed to update role: %w", err)
	}
	if !updated {
		return model.ErrUserNotFound
	}

	s.logger.Info().Str("user_id", id.String()).Str("role", string(role)).Msg("user role updated")
	return nil
}
