package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"sort"
	"strings"

	"github.com/example/room-booking/internal/persistence"
)

// UserService reads and maintains the user directory. Users are keyed by
// e-mail address.
type UserService struct {
	users  persistence.UserRepository
	logger *slog.Logger
}

// NewUserService wires dependencies for the user service.
func NewUserService(users persistence.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{users: users, logger: defaultLogger(logger)}
}

func (s *UserService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "UserService", operation, attrs...)
}

// UpsertUser validates input and creates or updates a directory entry for
// administrators.
func (s *UserService) UpsertUser(ctx context.Context, params UpsertUserParams) (user User, err error) {
	if s == nil {
		err = fmt.Errorf("UserService is nil")
		return
	}

	logger := s.loggerWith(ctx, "UpsertUser", "principal_id", params.Principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to upsert user", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", user.Email, "role", user.Role).InfoContext(ctx, "user saved")
	}()

	if !params.Principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}

	normalized := normalizeUserInput(params.Input)
	vErr := validateUserInput(normalized)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	user = User{Email: normalized.Email, Name: normalized.Name, Role: Role(normalized.Role)}
	err = s.users.UpsertUser(ctx, persistence.User{Email: user.Email, Name: user.Name, Role: string(user.Role)})
	return
}

// GetUser returns a directory entry to the user it describes or to an
// administrator.
func (s *UserService) GetUser(ctx context.Context, principal Principal, email string) (User, error) {
	if s == nil {
		return User{}, fmt.Errorf("UserService is nil")
	}
	email = normalizeEmail(email)
	if email != principal.UserID && !principal.IsAdmin() {
		return User{}, ErrUnauthorized
	}
	stored, err := s.users.GetUser(ctx, email)
	if err != nil {
		return User{}, mapRepoError(err)
	}
	return toUser(stored), nil
}

// ListUsers returns all users for administrators, ordered by e-mail.
func (s *UserService) ListUsers(ctx context.Context, principal Principal) ([]User, error) {
	if s == nil {
		return nil, fmt.Errorf("UserService is nil")
	}
	if !principal.IsAdmin() {
		return nil, ErrUnauthorized
	}

	stored, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]User, 0, len(stored))
	for _, u := range stored {
		out = append(out, toUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

// EnsureAdmin makes sure the given address exists with the Admin role. It is
// used to bootstrap an empty directory and leaves an existing admin untouched.
func (s *UserService) EnsureAdmin(ctx context.Context, email, name string) error {
	if s == nil {
		return fmt.Errorf("UserService is nil")
	}
	email = normalizeEmail(email)
	if email == "" {
		return nil
	}
	logger := s.loggerWith(ctx, "EnsureAdmin", "user_id", email)

	existing, err := s.users.GetUser(ctx, email)
	switch {
	case err == nil && ParseRole(existing.Role) == RoleAdmin:
		return nil
	case err == nil:
		existing.Role = string(RoleAdmin)
	case errors.Is(err, persistence.ErrNotFound):
		existing = persistence.User{Email: email, Name: strings.TrimSpace(name), Role: string(RoleAdmin)}
	default:
		return err
	}
	if existing.Name == "" {
		existing.Name = email
	}

	if err := s.users.UpsertUser(ctx, existing); err != nil {
		logger.ErrorContext(ctx, "failed to bootstrap admin", "error", err)
		return err
	}
	logger.InfoContext(ctx, "admin bootstrapped")
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizeUserInput(input UserInput) UserInput {
	return UserInput{
		Email: normalizeEmail(input.Email),
		Name:  strings.TrimSpace(input.Name),
		Role:  strings.TrimSpace(input.Role),
	}
}

func validateUserInput(input UserInput) *ValidationError {
	vErr := &ValidationError{}

	if input.Email == "" {
		vErr.add("email", "email is required")
	} else if _, err := mail.ParseAddress(input.Email); err != nil {
		vErr.add("email", "email is invalid")
	}

	if input.Name == "" {
		vErr.add("name", "name is required")
	}

	switch Role(input.Role) {
	case RoleStudent, RoleStaff, RoleSelectedStaff, RoleAdmin:
	default:
		vErr.add("role", "role is invalid")
	}

	return vErr
}
