package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/helpdesk-io/helpdesk-service/internal/auth"
	"github.com/helpdesk-io/helpdesk-service/internal/config"
	"github.com/helpdesk-io/helpdesk-service/internal/domain"
	"github.com/helpdesk-io/helpdesk-service/internal/policy"
	"github.com/helpdesk-io/helpdesk-service/internal/repository"
	apperrors "github.com/helpdesk-io/helpdesk-service/pkg/util/errorutil"
)

// UserService is the admin-facing account management surface.
type UserService struct {
	users repository.UserRepository
	cfg   config.AuthConfig
}

// UserDependencies bundles collaborators for user service.
type UserDependencies struct {
	UserRepo repository.UserRepository
	Config   config.AuthConfig
}

// UserCreateInput provisions an account with an explicit role.
type UserCreateInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

// UserUpdateInput applies partial account updates.
type UserUpdateInput struct {
	Name  *string
	Email *string
	Role  *domain.Role
}

// UserListFilter narrows account listings.
type UserListFilter struct {
	Role   *domain.Role
	Limit  int
	Offset int
}

// NewUserService constructs the service.
func NewUserService(deps UserDependencies) *UserService {
	return &UserService{users: deps.UserRepo, cfg: deps.Config}
}

// Create provisions an account, typically a support staff member.
func (s *UserService) Create(ctx context.Context, actor policy.Actor, input UserCreateInput) (*domain.User, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("only admins may provision accounts")
	}
	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)
	if err := validateAccount(name, email, input.Password); err != nil {
		return nil, err
	}
	if !input.Role.Valid() {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": "unknown value"})
	}

	if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         input.Role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// List returns accounts, optionally filtered by role.
func (s *UserService) List(ctx context.Context, actor policy.Actor, filter UserListFilter) ([]domain.User, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("only admins may list accounts")
	}
	users, err := s.users.List(ctx, repository.UserFilter{
		Role:   filter.Role,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// Get fetches a single account.
func (s *UserService) Get(ctx context.Context, actor policy.Actor, userID string) (*domain.User, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("only admins may inspect accounts")
	}
	return s.load(ctx, userID)
}

// Update applies partial changes, including role moves between tiers.
func (s *UserService) Update(ctx context.Context, actor policy.Actor, userID string, input UserUpdateInput) (*domain.User, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("only admins may update accounts")
	}
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("invalid name", map[string]any{"name": "required"})
		}
		user.Name = name
	}
	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing != nil && existing.ID != user.ID {
			return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
		} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.MapError(err)
		}
		user.Email = email
	}
	if input.Role != nil {
		if !input.Role.Valid() {
			return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": "unknown value"})
		}
		if user.ID == actor.ID && *input.Role != domain.RoleAdmin {
			return nil, apperrors.NewConflict("admins cannot demote themselves", nil)
		}
		user.Role = *input.Role
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// Delete removes an account. Admins cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, actor policy.Actor, userID string) error {
	if actor.Role != domain.RoleAdmin {
		return apperrors.NewForbidden("only admins may delete accounts")
	}
	if actor.ID == userID {
		return apperrors.NewConflict("admins cannot delete their own account", nil)
	}
	if _, err := s.load(ctx, userID); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

func (s *UserService) load(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}
