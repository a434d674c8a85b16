package domain

import (
	"context"
	"time"
)

type SignUpRequest struct {
	Email    string
	Password string
	FullName string
	Phone    string
	Role     Role
}

type LoginRequest struct {
	Email     string
	Password  string
	UserAgent string
	IPAddress string
}

type LoginResult struct {
	User      *User
	Token     string
	ExpiresAt time.Time
}

type Service interface {
	SignUp(ctx context.Context, req SignUpRequest) (*User, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	Logout(ctx context.Context, token string) error
	// Authenticate resolves a session token to the caller identity.
	Authenticate(ctx context.Context, token string) (Identity, error)
}
