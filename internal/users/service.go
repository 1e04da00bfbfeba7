package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/userdesk/internal/platform/httpx"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ListUsers(ctx context.Context) ([]User, error)
	CreateUser(ctx context.Context, input NewUser) (User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// MutationRecorder counts confirmed store mutations.
type MutationRecorder interface {
	RecordUserMutation(op string)
}

// Service handles user business logic.
type Service struct {
	repo     RepositoryPort
	cache    *ListCache
	recorder MutationRecorder
	logger   *slog.Logger
	validate *validator.Validate
}

// NewService builds Service instance. cache and recorder may be nil.
func NewService(repo RepositoryPort, cache *ListCache, recorder MutationRecorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		cache:    cache,
		recorder: recorder,
		logger:   logger,
		validate: validator.New(),
	}
}

// ListUsers returns all users, never nil.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	users, err := s.cache.Fetch(ctx, s.repo.ListUsers)
	if errors.Is(err, ErrCacheUnavailable) {
		s.logger.Warn("users cache fallback", slog.Any("error", err))
		users, err = s.repo.ListUsers(ctx)
	}
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []User{}
	}
	return users, nil
}

// CreateUser validates and persists a new user.
func (s *Service) CreateUser(ctx context.Context, input NewUser) (User, error) {
	if err := s.validate.Struct(input); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return User{}, fmt.Errorf("%w: %s is required", httpx.ErrValidation, jsonField(verrs[0].Field()))
		}
		return User{}, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	user, err := s.repo.CreateUser(ctx, input)
	if err != nil {
		return User{}, err
	}
	s.afterMutation(ctx, "create")
	return user, nil
}

// DeleteUser removes a user; a missing id yields httpx.ErrNotFound.
func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.afterMutation(ctx, "delete")
	return nil
}

func (s *Service) afterMutation(ctx context.Context, op string) {
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("users cache bump", slog.String("op", op), slog.Any("error", err))
	}
	if s.recorder != nil {
		s.recorder.RecordUserMutation(op)
	}
}

func jsonField(field string) string {
	switch field {
	case "Name":
		return "name"
	case "Email":
		return "email"
	default:
		return field
	}
}
