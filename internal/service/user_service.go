package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/hvac-service-desk/internal/auth"
	"github.com/spec-kit/hvac-service-desk/internal/domain"
	"github.com/spec-kit/hvac-service-desk/internal/repository"
	apperrors "github.com/spec-kit/hvac-service-desk/pkg/util"
)

// UserService manages staff accounts. Account administration is admin-only;
// listing technicians is also open to quality managers who need it for
// reassignment.
type UserService struct {
	users      repository.UserRepository
	bcryptCost int
	logger     *zap.Logger
}

// NewUserService constructs the service.
func NewUserService(users repository.UserRepository, bcryptCost int, logger *zap.Logger) *UserService {
	return &UserService{users: users, bcryptCost: bcryptCost, logger: logger}
}

// CreateUserInput carries a new staff account.
type CreateUserInput struct {
	Username string
	Password string
	FullName string
	Role     domain.Role
	Phone    string
	Email    string
}

// CreateUser registers a staff account. Admin only.
func (s *UserService) CreateUser(ctx context.Context, actor domain.Actor, input CreateUserInput) (*domain.User, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("only an administrator may create accounts")
	}

	input.Username = strings.TrimSpace(input.Username)
	input.FullName = strings.TrimSpace(input.FullName)
	if input.Username == "" {
		return nil, apperrors.NewInvalidArgument("username is required", nil)
	}
	if input.Password == "" {
		return nil, apperrors.NewInvalidArgument("password is required", nil)
	}
	if input.FullName == "" {
		return nil, apperrors.NewInvalidArgument("full name is required", nil)
	}
	if !input.Role.Valid() {
		return nil, apperrors.NewInvalidArgument("unknown role", map[string]any{"role": string(input.Role)})
	}

	if _, err := s.users.GetByUsername(ctx, input.Username); err == nil {
		return nil, apperrors.NewConflict("username already taken", map[string]any{"username": input.Username})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Username:     input.Username,
		PasswordHash: hash,
		FullName:     input.FullName,
		Role:         input.Role,
		Phone:        strings.TrimSpace(input.Phone),
		Email:        strings.TrimSpace(input.Email),
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// ListUsers returns active accounts, optionally filtered by role. Admins may
// list any role; quality managers may list technicians.
func (s *UserService) ListUsers(ctx context.Context, actor domain.Actor, role *domain.Role) ([]domain.User, error) {
	if role != nil && !role.Valid() {
		return nil, apperrors.NewInvalidArgument("unknown role", map[string]any{"role": string(*role)})
	}
	allowed := actor.IsAdmin() ||
		(actor.CanManageQuality() && role != nil && *role == domain.RoleTechnician)
	if !allowed {
		return nil, apperrors.NewForbidden("insufficient role to list accounts")
	}

	result, err := s.users.List(ctx, role)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return result, nil
}

// GetUser returns a single account. Admin only.
func (s *UserService) GetUser(ctx context.Context, actor domain.Actor, id int64) (*domain.User, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("only an administrator may view accounts")
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// SetActive enables or disables an account. Admin only; admins cannot
// deactivate themselves.
func (s *UserService) SetActive(ctx context.Context, actor domain.Actor, id int64, active bool) (*domain.User, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("only an administrator may change account state")
	}
	if !active && id == actor.ID {
		return nil, apperrors.NewInvalidArgument("cannot deactivate your own account", nil)
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}

	user.Active = active
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// EnsureAdmin creates the bootstrap administrator account on first start.
// A no-op when the username already exists or no bootstrap password is set.
func (s *UserService) EnsureAdmin(ctx context.Context, username, password, fullName string) error {
	if username == "" || password == "" {
		return nil
	}

	_, err := s.users.GetByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	admin := &domain.User{
		Username:     username,
		PasswordHash: hash,
		FullName:     fullName,
		Role:         domain.RoleAdmin,
		Active:       true,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return apperrors.MapError(err)
	}
	if s.logger != nil {
		s.logger.Info("bootstrap admin account created", zap.String("username", username))
	}
	return nil
}
