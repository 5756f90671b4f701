// Package service provides business logic services for Agora.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/prn-tf/agora/internal/domain"
	"github.com/prn-tf/agora/internal/repository"
)

// TokenIssuer signs bearer tokens for authenticated users.
type TokenIssuer interface {
	Issue(identityID string) (string, error)
}

// UserService handles registration, login and user lookups.
type UserService struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	tokens   TokenIssuer
	logger   zerolog.Logger

	// dummyDigest is compared against when the email is unknown.
	dummyDigest string
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository, hasher PasswordHasher, tokens TokenIssuer, logger zerolog.Logger) *UserService {
	s := &UserService{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		logger:   logger.With().Str("service", "user").Logger(),
	}
	if digest, err := hasher.Hash(uuid.NewString()); err == nil {
		s.dummyDigest = digest
	}
	return s
}

// RegisterInput contains the data needed to register a user.
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`

	// Role defaults to domain.RoleUser. Only the admin CLI sets it.
	Role string `json:"-"`
}

// Validate checks that every field is present.
func (in RegisterInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Username, validation.Required),
		validation.Field(&in.Email, validation.Required),
		validation.Field(&in.Password, validation.Required, validation.By(maxBytes(MaxPasswordBytes))),
	)
}

// MaxPasswordBytes is the longest password bcrypt can digest.
const MaxPasswordBytes = 72

// maxBytes rejects strings longer than n bytes.
func maxBytes(n int) validation.RuleFunc {
	return func(value interface{}) error {
		if s, ok := value.(string); ok && len(s) > n {
			return fmt.Errorf("must be no more than %d bytes", n)
		}
		return nil
	}
}

// Register hashes the password and stores a new user.
// Uniqueness of username and email is enforced by the store and surfaces as
// domain.ErrUserAlreadyExists.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)

	if err := validationError(input.Validate()); err != nil {
		return nil, err
	}

	digest, err := s.hasher.Hash(input.Password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, domain.NewValidationError("password", fmt.Sprintf("must be no more than %d bytes", MaxPasswordBytes))
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hash password")
		return nil, fmt.Errorf("%w: failed to hash password", domain.ErrInternal)
	}

	user := domain.NewUser(uuid.NewString(), input.Username, input.Email, digest)
	if input.Role != "" {
		user.Role = input.Role
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			s.logger.Debug().Str("username", input.Username).Msg("duplicate registration rejected")
			return nil, err
		}
		s.logger.Error().Err(err).Str("username", input.Username).Msg("failed to create user")
		return nil, fmt.Errorf("%w: %v", domain.ErrInternal, err)
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("username", user.Username).
		Str("role", user.Role).
		Msg("user registered")

	return user, nil
}

// LoginInput contains login credentials.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks that every field is present.
func (in LoginInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Email, validation.Required),
		validation.Field(&in.Password, validation.Required),
	)
}

// Login verifies credentials and issues a bearer token.
// An unknown email and a wrong password both yield domain.ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, input LoginInput) (string, error) {
	input.Email = strings.TrimSpace(input.Email)

	if err := validationError(input.Validate()); err != nil {
		return "", err
	}

	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			s.logger.Error().Err(err).Msg("failed to look up user during login")
			return "", fmt.Errorf("%w: %v", domain.ErrInternal, err)
		}
		// Unknown emails still pay for one hash comparison.
		s.hasher.Verify(s.dummyDigest, input.Password)
		s.logger.Debug().Msg("login for unknown email")
		return "", domain.ErrInvalidCredentials
	}

	if !s.hasher.Verify(user.PasswordHash, input.Password) {
		s.logger.Debug().Str("user_id", user.ID).Msg("invalid password during login")
		return "", domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("failed to issue token")
		return "", fmt.Errorf("%w: %v", domain.ErrInternal, err)
	}

	s.logger.Info().Str("user_id", user.ID).Msg("user logged in")
	return token, nil
}

// GetByID retrieves a user by ID. Returns domain.ErrUserNotFound if absent.
func (s *UserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		s.logger.Error().Err(err).Str("user_id", id).Msg("failed to get user")
		return nil, fmt.Errorf("%w: %v", domain.ErrInternal, err)
	}
	return user, nil
}

// List returns all users.
func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list users")
		return nil, fmt.Errorf("%w: %v", domain.ErrInternal, err)
	}
	return users, nil
}
