package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/colmadolabs/colmado/internal/auth/domain"
	"github.com/colmadolabs/colmado/internal/auth/repository"
	"github.com/colmadolabs/colmado/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupAuth(t *testing.T) (domain.Service, *clock.FakeClock) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.User{}, &domain.Session{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))

	svc := New(Params{
		Log:         zap.NewNop(),
		GenID:       node,
		Clock:       fake,
		Repo:        repository.ProvideUserRepository(conn),
		SessionRepo: repository.ProvideSessionRepository(conn),
	})
	return svc, fake
}

func TestSignUpAndLogin(t *testing.T) {
	svc, _ := setupAuth(t)
	ctx := context.Background()

	user, err := svc.SignUp(ctx, domain.SignUpRequest{
		Email:    "Maria@Example.COM",
		Password: "secret-password",
		FullName: "María",
	})
	require.NoError(t, err)
	assert.Equal(t, "maria@example.com", user.Email)
	assert.Equal(t, domain.RoleCustomer, user.Role)

	result, err := svc.Login(ctx, domain.LoginRequest{
		Email:    "maria@example.com",
		Password: "secret-password",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, user.ID, result.User.ID)
}

func TestSignUpRejectsDuplicateEmail(t *testing.T) {
	svc, _ := setupAuth(t)
	ctx := context.Background()

	req := domain.SignUpRequest{Email: "dup@example.com", Password: "secret-password"}
	_, err := svc.SignUp(ctx, req)
	require.NoError(t, err)

	_, err = svc.SignUp(ctx, req)
	assert.ErrorIs(t, err, domain.ErrUserExists)
}

func TestSignUpRejectsWeakPassword(t *testing.T) {
	svc, _ := setupAuth(t)

	_, err := svc.SignUp(context.Background(), domain.SignUpRequest{
		Email:    "weak@example.com",
		Password: "short",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestSignUpRejectsUnknownRole(t *testing.T) {
	svc, _ := setupAuth(t)

	_, err := svc.SignUp(context.Background(), domain.SignUpRequest{
		Email:    "role@example.com",
		Password: "secret-password",
		Role:     "admin",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidRole)
}

func TestLoginWrongPasswordIsUniform(t *testing.T) {
	svc, _ := setupAuth(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, domain.SignUpRequest{Email: "u@example.com", Password: "secret-password"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, domain.LoginRequest{Email: "u@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	// Unknown account yields the same error as a bad password.
	_, err = svc.Login(ctx, domain.LoginRequest{Email: "nobody@example.com", Password: "whatever-pass"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthenticateResolvesIdentity(t *testing.T) {
	svc, _ := setupAuth(t)
	ctx := context.Background()

	user, err := svc.SignUp(ctx, domain.SignUpRequest{
		Email:    "owner@example.com",
		Password: "secret-password",
		Role:     domain.RoleOwner,
	})
	require.NoError(t, err)

	result, err := svc.Login(ctx, domain.LoginRequest{Email: "owner@example.com", Password: "secret-password"})
	require.NoError(t, err)

	identity, err := svc.Authenticate(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, identity.UserID)
	assert.Equal(t, domain.RoleOwner, identity.Role)
}

func TestAuthenticateExpiredSession(t *testing.T) {
	svc, fake := setupAuth(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, domain.SignUpRequest{Email: "e@example.com", Password: "secret-password"})
	require.NoError(t, err)

	result, err := svc.Login(ctx, domain.LoginRequest{Email: "e@example.com", Password: "secret-password"})
	require.NoError(t, err)

	fake.Advance(8 * 24 * time.Hour)

	_, err = svc.Authenticate(ctx, result.Token)
	assert.ErrorIs(t, err, domain.ErrSessionExpired)
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, _ := setupAuth(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, domain.SignUpRequest{Email: "l@example.com", Password: "secret-password"})
	require.NoError(t, err)

	result, err := svc.Login(ctx, domain.LoginRequest{Email: "l@example.com", Password: "secret-password"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, result.Token))

	_, err = svc.Authenticate(ctx, result.Token)
	assert.ErrorIs(t, err, domain.ErrSessionRevoked)
}

func TestAuthenticateGarbageToken(t *testing.T) {
	svc, _ := setupAuth(t)

	_, err := svc.Authenticate(context.Background(), "not-a-real-token")
	assert.Error(t, err)
}
