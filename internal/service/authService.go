package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/campushub/event-registration/config"
	repository "github.com/campushub/event-registration/internal/database/postgres"
	"github.com/campushub/event-registration/internal/entity"
)

type SignupRequest struct {
	Username string      `json:"username" binding:"required,min=3,max=64"`
	Password string      `json:"password" binding:"required,min=8,max=128"`
	Role     entity.Role `json:"role"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string      `json:"token"`
	Role  entity.Role `json:"role"`
}

type identityClaims struct {
	Role entity.Role `json:"role"`
	jwt.RegisteredClaims
}

type authService struct {
	users      repository.UserRepository
	secret     []byte
	tokenTTL   time.Duration
	bcryptCost int
}

func NewAuthService(users repository.UserRepository, cfg *config.AuthConfig) AuthService {
	cost := cfg.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &authService{
		users:      users,
		secret:     []byte(cfg.JWTSecret),
		tokenTTL:   cfg.TokenTTL,
		bcryptCost: cost,
	}
}

func (s *authService) Signup(ctx context.Context, req *SignupRequest) (*entity.User, error) {
	username := strings.TrimSpace(strings.ToLower(req.Username))
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", entity.ErrInvalidInput)
	}

	role := req.Role
	if role == "" {
		role = entity.RoleStudent
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", entity.ErrInvalidInput, req.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &entity.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies the credentials and issues a signed token carrying the
// resolved (subject, role) pair. Bad username and bad password produce the
// same error so callers learn only the category.
func (s *authService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	username := strings.TrimSpace(strings.ToLower(req.Username))

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, entity.ErrUserNotFound) {
			return nil, entity.ErrUnauthenticated
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, entity.ErrUnauthenticated
	}

	now := time.Now()
	claims := identityClaims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &LoginResponse{Token: token, Role: user.Role}, nil
}

// Verify resolves an opaque token into an Identity. Any failure (bad
// signature, expiry, malformed claims) collapses into ErrUnauthenticated.
func (s *authService) Verify(token string) (*entity.Identity, error) {
	var claims identityClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, entity.ErrUnauthenticated
	}
	if claims.Subject == "" || !claims.Role.Valid() {
		return nil, entity.ErrUnauthenticated
	}
	return &entity.Identity{SubjectID: claims.Subject, Role: claims.Role}, nil
}
