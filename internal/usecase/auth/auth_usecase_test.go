package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soulbond-app/soulbond-backend/internal/domain"
	"github.com/soulbond-app/soulbond-backend/internal/repository/memory"
)

func newTestUseCase(t *testing.T) *AuthUseCase {
	t.Helper()
	store := memory.NewStore()
	return NewAuthUseCase(
		memory.NewUserRepository(store),
		memory.NewSessionRepository(store),
		nil, "test-secret", 60, 30,
	)
}

func adultDOB() string {
	return time.Now().AddDate(-25, 0, 0).Format("2006-01-02")
}

func TestRegisterAndLogin(t *testing.T) {
	uc := newTestUseCase(t)

	resp, err := uc.Register(context.Background(), &RegisterRequest{
		Email:       "a@example.com",
		Password:    "correct horse",
		DateOfBirth: adultDOB(),
	}, "test-device", "127.0.0.1")
	require.NoError(t, err)
	assert.True(t, resp.IsNewUser)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "a@example.com", resp.User.Email)

	login, err := uc.Login(context.Background(), &LoginRequest{
		Email:    "a@example.com",
		Password: "correct horse",
	}, "", "")
	require.NoError(t, err)
	assert.False(t, login.IsNewUser)
	assert.Equal(t, resp.User.ID, login.User.ID)
}

func TestRegisterRejectsMinors(t *testing.T) {
	uc := newTestUseCase(t)

	_, err := uc.Register(context.Background(), &RegisterRequest{
		Email:       "kid@example.com",
		Password:    "longenough",
		DateOfBirth: time.Now().AddDate(-17, 0, 0).Format("2006-01-02"),
	}, "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRegisterRejectsBadDateFormat(t *testing.T) {
	uc := newTestUseCase(t)

	_, err := uc.Register(context.Background(), &RegisterRequest{
		Email:       "a@example.com",
		Password:    "longenough",
		DateOfBirth: "10/05/1994",
	}, "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	uc := newTestUseCase(t)

	req := &RegisterRequest{Email: "a@example.com", Password: "longenough", DateOfBirth: adultDOB()}
	_, err := uc.Register(context.Background(), req, "", "")
	require.NoError(t, err)

	_, err = uc.Register(context.Background(), req, "", "")
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
}

func TestLoginWrongPassword(t *testing.T) {
	uc := newTestUseCase(t)

	_, err := uc.Register(context.Background(), &RegisterRequest{
		Email:       "a@example.com",
		Password:    "correct horse",
		DateOfBirth: adultDOB(),
	}, "", "")
	require.NoError(t, err)

	_, err = uc.Login(context.Background(), &LoginRequest{Email: "a@example.com", Password: "battery staple"}, "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = uc.Login(context.Background(), &LoginRequest{Email: "nobody@example.com", Password: "whatever"}, "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestValidateTokenRoundTrip(t *testing.T) {
	uc := newTestUseCase(t)

	resp, err := uc.Register(context.Background(), &RegisterRequest{
		Email:       "a@example.com",
		Password:    "correct horse",
		DateOfBirth: adultDOB(),
	}, "", "")
	require.NoError(t, err)

	userID, err := uc.ValidateToken(context.Background(), resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, userID)

	_, err = uc.ValidateToken(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	// A token signed with another secret is rejected.
	other := newTestUseCase(t)
	stolen, err := other.Register(context.Background(), &RegisterRequest{
		Email:       "b@example.com",
		Password:    "correct horse",
		DateOfBirth: adultDOB(),
	}, "", "")
	require.NoError(t, err)
	other.jwtSecret = "different-secret"
	_, err = other.ValidateToken(context.Background(), stolen.Token)
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestSignInSweepsExpiredSessions(t *testing.T) {
	store := memory.NewStore()
	sessionRepo := memory.NewSessionRepository(store)
	uc := NewAuthUseCase(memory.NewUserRepository(store), sessionRepo, nil, "test-secret", 60, 30)

	require.NoError(t, sessionRepo.Create(context.Background(), &domain.Session{
		UserID:    42,
		Token:     "stale",
		ExpiresAt: time.Now().Add(-time.Hour),
	}))

	_, err := uc.Register(context.Background(), &RegisterRequest{
		Email:       "a@example.com",
		Password:    "correct horse",
		DateOfBirth: adultDOB(),
	}, "", "")
	require.NoError(t, err)

	// Opening the new session swept the stale row.
	n, err := sessionRepo.DeleteExpired(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestLogoutInvalidatesSession(t *testing.T) {
	uc := newTestUseCase(t)

	resp, err := uc.Register(context.Background(), &RegisterRequest{
		Email:       "a@example.com",
		Password:    "correct horse",
		DateOfBirth: adultDOB(),
	}, "", "")
	require.NoError(t, err)

	require.NoError(t, uc.Logout(context.Background(), resp.Token))

	// The JWT is still well formed but its session is gone.
	_, err = uc.ValidateToken(context.Background(), resp.Token)
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	// Logging out twice is harmless.
	assert.NoError(t, uc.Logout(context.Background(), resp.Token))
}
