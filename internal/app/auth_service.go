package app

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"jobboard/internal/common"
	"jobboard/internal/domain/user"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) (bool, error)
}

type TokenIssuer interface {
	Generate(userID int64, role string, ttl time.Duration) (string, time.Time, error)
}

// AuthService owns registration, login and token issuance.
type AuthService struct {
	users     user.Repository
	hasher    PasswordHasher
	tokens    TokenIssuer
	accessTTL time.Duration
}

func NewAuthService(users user.Repository, hasher PasswordHasher, tokens TokenIssuer, accessTTL time.Duration) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens, accessTTL: accessTTL}
}

type RegisterInput struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Name     string `json:"name" validate:"required,min=2,max=100"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResult struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	User      *user.User `json:"user"`
}

// Register creates a regular user. Roles are never taken from the caller.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return nil, validationError("invalid registration", err)
	}
	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, common.NewError(common.CodeConflict, "email already registered", nil)
	} else if !common.Is(err, common.CodeNotFound) {
		return nil, err
	}
	account, err := createUser(ctx, s.users, s.hasher, in.Email, in.Password, in.Name, user.RoleUser)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "user registered", slog.Int64("user_id", account.ID))
	return s.issue(account)
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validate.Struct(in); err != nil {
		return nil, validationError("invalid credentials", err)
	}
	account, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if common.Is(err, common.CodeNotFound) {
			return nil, common.NewError(common.CodeUnauthorized, "invalid email or password", nil)
		}
		return nil, err
	}
	ok, err := s.hasher.Compare(account.PasswordHash, in.Password)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to verify password", err)
	}
	if !ok {
		slog.WarnContext(ctx, "login rejected", slog.Int64("user_id", account.ID))
		return nil, common.NewError(common.CodeUnauthorized, "invalid email or password", nil)
	}
	return s.issue(account)
}

func (s *AuthService) Me(ctx context.Context, actor user.Identity) (*user.User, error) {
	if err := requireAuthenticated(actor); err != nil {
		return nil, err
	}
	account, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		if common.Is(err, common.CodeNotFound) {
			return nil, common.NewError(common.CodeUnauthorized, "user no longer exists", err)
		}
		return nil, err
	}
	return account, nil
}

func (s *AuthService) issue(account *user.User) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.Generate(account.ID, string(account.Role), s.accessTTL)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to issue token", err)
	}
	return &AuthResult{Token: token, ExpiresAt: expiresAt, User: account}, nil
}

func createUser(ctx context.Context, users user.Repository, hasher PasswordHasher, email, password, name string, role user.Role) (*user.User, error) {
	hash, err := hasher.Hash(password)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to hash password", err)
	}
	return users.Create(ctx, user.User{Email: email, PasswordHash: hash, Name: name, Role: role})
}
