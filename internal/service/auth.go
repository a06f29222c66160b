package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"server/internal/domain"
	"server/internal/middleware"
)

// RegisterInput is the account creation payload.
type RegisterInput struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	Age           int    `json:"age"`
	BloodGroup    string `json:"bloodGroup"`
	Role          string `json:"role"`
	Address       string `json:"address"`
	Phone         string `json:"phone"`
	WalletAddress string `json:"walletAddress"`
}

// Auth handles account registration and credential checks, and issues the
// bearer tokens the role-gated workflows rely on.
type Auth struct {
	users  domain.UserRepository
	secret string
	ttl    time.Duration
}

// NewAuth builds the auth service.
func NewAuth(users domain.UserRepository, secret string, ttl time.Duration) *Auth {
	return &Auth{users: users, secret: secret, ttl: ttl}
}

// Register creates an account and returns it with a fresh token.
func (a *Auth) Register(ctx context.Context, in RegisterInput) (*domain.User, string, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if name == "" || email == "" || len(in.Password) < 8 {
		return nil, "", fmt.Errorf("%w: name, email and a password of at least 8 characters are required", domain.ErrInvalidInput)
	}
	role, ok := domain.ParseRole(in.Role)
	if !ok {
		return nil, "", fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, in.Role)
	}
	group, err := domain.ParseBloodGroup(in.BloodGroup)
	if err != nil {
		return nil, "", err
	}

	if _, err := a.users.GetByEmail(ctx, email); err == nil {
		return nil, "", domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, "", err
	}

	hash, salt, err := hashPassword(in.Password)
	if err != nil {
		return nil, "", err
	}

	user, err := a.users.Create(ctx, &domain.User{
		Name:          name,
		Email:         email,
		PasswordHash:  hash,
		PasswordSalt:  salt,
		Age:           in.Age,
		BloodGroup:    group,
		Role:          role,
		Address:       in.Address,
		Phone:         in.Phone,
		WalletAddress: in.WalletAddress,
	})
	if err != nil {
		return nil, "", err
	}

	token, err := a.token(user)
	return user, token, err
}

// Login checks credentials and returns the account with a fresh token.
func (a *Auth) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := a.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", domain.ErrForbidden
		}
		return nil, "", err
	}
	ok, err := verifyPassword(password, user.PasswordSalt, user.PasswordHash)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, "", domain.ErrForbidden
	}
	token, err := a.token(user)
	return user, token, err
}

// GetUser fetches an account by ID.
func (a *Auth) GetUser(ctx context.Context, id int) (*domain.User, error) {
	return a.users.GetByID(ctx, id)
}

func (a *Auth) token(user *domain.User) (string, error) {
	return middleware.SignJWT(a.secret, middleware.TokenClaims{
		Sub:      user.ID,
		Role:     string(user.Role),
		Wallet:   user.WalletAddress,
		Exp:      time.Now().Add(a.ttl).Unix(),
		Issuer:   "bloodbank-api",
		Audience: "bloodbank-client",
	})
}
