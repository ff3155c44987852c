package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"linkvault/internal/config"
	"linkvault/internal/model"
	"linkvault/internal/repository"
)

// AuthService is the identity provider collaborator: it verifies credentials
// and issues/validates bearer tokens. The vault engine only ever sees the
// resulting opaque Identity.
type AuthService interface {
	// Register creates an account and returns a signed token for it.
	Register(ctx context.Context, name, email, password string) (string, *model.Identity, error)

	// Login verifies credentials and returns a signed token. Unknown email
	// and wrong password are indistinguishable.
	Login(ctx context.Context, email, password string) (string, *model.Identity, error)

	// ValidateToken parses and verifies a bearer token.
	ValidateToken(token string) (*model.Identity, error)
}

// jwtClaims carries the identity inside issued tokens.
type jwtClaims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type authService struct {
	users  repository.UserRepository
	secret []byte
	ttl    time.Duration
}

// NewAuthService constructs the identity provider.
func NewAuthService(users repository.UserRepository, cfg config.AuthConfig) AuthService {
	return &authService{
		users:  users,
		secret: []byte(cfg.JWTSecret),
		ttl:    time.Duration(cfg.TokenTTLDays) * 24 * time.Hour,
	}
}

func (s *authService) Register(ctx context.Context, name, email, password string) (string, *model.Identity, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if name == "" || email == "" || password == "" {
		return "", nil, validationErr("All fields are required.")
	}
	if len(password) < 6 {
		return "", nil, validationErr("Password must be at least 6 characters.")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, &model.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hashed),
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return "", nil, validationErr("Email already registered.")
		}
		return "", nil, fmt.Errorf("create user: %w", err)
	}

	return s.issue(identityOf(user))
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *model.Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, validationErr("Email and password required.")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("find user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	return s.issue(identityOf(user))
}

func identityOf(u *model.User) *model.Identity {
	return &model.Identity{ID: u.ID, Name: u.Name, Email: u.Email}
}

func (s *authService) issue(ident *model.Identity) (string, *model.Identity, error) {
	now := time.Now()
	claims := jwtClaims{
		Name:  ident.Name,
		Email: ident.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ident.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "linkvault",
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, ident, nil
}

func (s *authService) ValidateToken(token string) (*model.Identity, error) {
	claims := &jwtClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	return &model.Identity{
		ID:    claims.Subject,
		Name:  claims.Name,
		Email: claims.Email,
	}, nil
}
