package app

import (
	"context"
	"log/slog"
	"strings"

	"jobboard/internal/common"
	"jobboard/internal/domain/user"
)

// UserService provisions accounts outside the public registration flow.
type UserService struct {
	users  user.Repository
	hasher PasswordHasher
}

func NewUserService(users user.Repository, hasher PasswordHasher) *UserService {
	return &UserService{users: users, hasher: hasher}
}

// EnsureAdmin creates an admin account unless one with this email exists.
// The boolean reports whether a new account was created.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password, name string) (*user.User, bool, error) {
	in := RegisterInput{Email: strings.ToLower(strings.TrimSpace(email)), Password: password, Name: strings.TrimSpace(name)}
	if err := validate.Struct(in); err != nil {
		return nil, false, validationError("invalid admin account", err)
	}
	existing, err := s.users.FindByEmail(ctx, in.Email)
	if err == nil {
		if existing.Role != user.RoleAdmin {
			return nil, false, common.NewError(common.CodeConflict, "email belongs to a non-admin account", nil)
		}
		return existing, false, nil
	}
	if !common.Is(err, common.CodeNotFound) {
		return nil, false, err
	}
	account, err := createUser(ctx, s.users, s.hasher, in.Email, in.Password, in.Name, user.RoleAdmin)
	if err != nil {
		return nil, false, err
	}
	slog.InfoContext(ctx, "admin account created", slog.Int64("user_id", account.ID))
	return account, true, nil
}
