package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/soulbond-app/soulbond-backend/internal/domain"
	"github.com/soulbond-app/soulbond-backend/internal/repository"
)

const minPasswordLength = 8

type AuthUseCase struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	cache       *redis.Client
	jwtSecret   string
	accessTTL   time.Duration
	sessionTTL  time.Duration
}

func NewAuthUseCase(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	cache *redis.Client,
	jwtSecret string,
	accessExpiryMin int,
	sessionTTLDays int,
) *AuthUseCase {
	return &AuthUseCase{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		cache:       cache,
		jwtSecret:   jwtSecret,
		accessTTL:   time.Duration(accessExpiryMin) * time.Minute,
		sessionTTL:  time.Duration(sessionTTLDays) * 24 * time.Hour,
	}
}

type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	DateOfBirth string `json:"date_of_birth" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *domain.User `json:"user"`
	IsNewUser bool         `json:"is_new_user"`
}

// claims carried by access tokens: the user and the session they
// belong to, so revoking the session invalidates the token.
type accessClaims struct {
	SessionToken string `json:"sid"`
	jwt.RegisteredClaims
}

// Register creates a user with a bcrypt-hashed password and opens a
// session. Users must be at least 18.
func (uc *AuthUseCase) Register(ctx context.Context, req *RegisterRequest, deviceInfo, ipAddress string) (*AuthResponse, error) {
	dob, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		return nil, fmt.Errorf("%w: date_of_birth must be YYYY-MM-DD", domain.ErrInvalidInput)
	}
	user := &domain.User{
		Email:       req.Email,
		DateOfBirth: dob,
		IsActive:    true,
	}
	if user.Age() < 18 {
		return nil, fmt.Errorf("%w: must be at least 18", domain.ErrInvalidInput)
	}
	if len(req.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password too short", domain.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = string(hash)

	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	token, expiresAt, err := uc.createSession(ctx, user.ID, deviceInfo, ipAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &AuthResponse{Token: token, ExpiresAt: expiresAt, User: user, IsNewUser: true}, nil
}

// Login verifies credentials and opens a session.
func (uc *AuthUseCase) Login(ctx context.Context, req *LoginRequest, deviceInfo, ipAddress string) (*AuthResponse, error) {
	user, err := uc.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	if err := uc.userRepo.UpdateLastSeen(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("failed to update last seen: %w", err)
	}

	token, expiresAt, err := uc.createSession(ctx, user.ID, deviceInfo, ipAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &AuthResponse{Token: token, ExpiresAt: expiresAt, User: user, IsNewUser: false}, nil
}

// Logout revokes the session behind the given access token.
func (uc *AuthUseCase) Logout(ctx context.Context, tokenString string) error {
	claims, err := uc.parseToken(tokenString)
	if err != nil {
		return err
	}
	if uc.cache != nil {
		_ = uc.cache.Del(ctx, sessionCacheKey(claims.SessionToken)).Err()
	}
	err = uc.sessionRepo.DeleteByToken(ctx, claims.SessionToken)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return nil
	}
	return err
}

// ValidateToken checks signature, expiry and session liveness, and
// returns the authenticated user id. Session lookups go through the
// Redis cache when available.
func (uc *AuthUseCase) ValidateToken(ctx context.Context, tokenString string) (int, error) {
	claims, err := uc.parseToken(tokenString)
	if err != nil {
		return 0, err
	}
	userID, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return 0, domain.ErrInvalidCredentials
	}

	if uc.cache != nil {
		cached, err := uc.cache.Get(ctx, sessionCacheKey(claims.SessionToken)).Int()
		if err == nil && cached == userID {
			return userID, nil
		}
	}

	session, err := uc.sessionRepo.GetByToken(ctx, claims.SessionToken)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return 0, domain.ErrInvalidCredentials
		}
		return 0, err
	}
	if session.UserID != userID {
		return 0, domain.ErrInvalidCredentials
	}

	if uc.cache != nil {
		_ = uc.cache.Set(ctx, sessionCacheKey(claims.SessionToken), userID, uc.accessTTL).Err()
	}
	return userID, nil
}

// Me returns the authenticated user.
func (uc *AuthUseCase) Me(ctx context.Context, userID int) (*domain.User, error) {
	return uc.userRepo.GetByID(ctx, userID)
}

func (uc *AuthUseCase) createSession(ctx context.Context, userID int, deviceInfo, ipAddress string) (string, time.Time, error) {
	// Expired rows are swept opportunistically on each sign-in; a failed
	// sweep never blocks it.
	_, _ = uc.sessionRepo.DeleteExpired(ctx)

	sessionToken := uuid.NewString()
	session := &domain.Session{
		UserID:    userID,
		Token:     sessionToken,
		ExpiresAt: time.Now().Add(uc.sessionTTL),
	}
	if deviceInfo != "" {
		session.DeviceInfo = &deviceInfo
	}
	if ipAddress != "" {
		session.IPAddress = &ipAddress
	}
	if err := uc.sessionRepo.Create(ctx, session); err != nil {
		return "", time.Time{}, err
	}

	expiresAt := time.Now().Add(uc.accessTTL)
	claims := accessClaims{
		SessionToken: sessionToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(userID),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(uc.jwtSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

func (uc *AuthUseCase) parseToken(tokenString string) (*accessClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &accessClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(uc.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, domain.ErrInvalidCredentials
	}
	claims, ok := token.Claims.(*accessClaims)
	if !ok || claims.SessionToken == "" {
		return nil, domain.ErrInvalidCredentials
	}
	return claims, nil
}

func sessionCacheKey(sessionToken string) string {
	return "session:" + sessionToken
}
