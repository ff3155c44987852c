package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"linkvault/internal/config"
	"linkvault/internal/model"
	"linkvault/internal/repository"
	repoMocks "linkvault/internal/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{JWTSecret: "test-secret", TokenTTLDays: 7}
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path issues a valid token", func(t *testing.T) {
		mUsers := new(repoMocks.MockUserRepository)
		svc := NewAuthService(mUsers, testAuthConfig())

		mUsers.On("CreateUser", ctx, mock.MatchedBy(func(u *model.User) bool {
			return u.Name == "Alice" && u.Email == "alice@example.com" &&
				u.PasswordHash != "" && u.PasswordHash != "secret123"
		})).Return(func(ctx context.Context, u *model.User) *model.User {
			return u
		}, nil)

		token, ident, err := svc.Register(ctx, " Alice ", "Alice@Example.com", "secret123")

		require.NoError(t, err)
		require.NotNil(t, ident)
		assert.Equal(t, "alice@example.com", ident.Email)

		parsed, err := svc.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, ident.ID, parsed.ID)
		assert.Equal(t, "Alice", parsed.Name)
	})

	t.Run("missing fields", func(t *testing.T) {
		svc := NewAuthService(new(repoMocks.MockUserRepository), testAuthConfig())

		_, _, err := svc.Register(ctx, "", "a@b.com", "secret123")

		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "All fields are required.", vErr.Reason)
	})

	t.Run("short password", func(t *testing.T) {
		svc := NewAuthService(new(repoMocks.MockUserRepository), testAuthConfig())

		_, _, err := svc.Register(ctx, "Alice", "a@b.com", "12345")

		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "Password must be at least 6 characters.", vErr.Reason)
	})

	t.Run("duplicate email", func(t *testing.T) {
		mUsers := new(repoMocks.MockUserRepository)
		svc := NewAuthService(mUsers, testAuthConfig())

		mUsers.On("CreateUser", ctx, mock.Anything).Return(nil, repository.ErrEmailTaken)

		_, _, err := svc.Register(ctx, "Alice", "a@b.com", "secret123")

		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "Email already registered.", vErr.Reason)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	storedUser := func(t *testing.T) *model.User {
		h, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
		require.NoError(t, err)
		return &model.User{
			ID:           "user-uuid",
			Name:         "Alice",
			Email:        "alice@example.com",
			PasswordHash: string(h),
			CreatedAt:    time.Now(),
		}
	}

	t.Run("happy path", func(t *testing.T) {
		mUsers := new(repoMocks.MockUserRepository)
		svc := NewAuthService(mUsers, testAuthConfig())

		mUsers.On("FindByEmail", ctx, "alice@example.com").Return(storedUser(t), nil)

		token, ident, err := svc.Login(ctx, "Alice@Example.com", "secret123")

		require.NoError(t, err)
		assert.Equal(t, "user-uuid", ident.ID)

		parsed, err := svc.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, "user-uuid", parsed.ID)
	})

	t.Run("unknown email and wrong password are indistinguishable", func(t *testing.T) {
		mUsers := new(repoMocks.MockUserRepository)
		svc := NewAuthService(mUsers, testAuthConfig())

		mUsers.On("FindByEmail", ctx, "nobody@example.com").Return(nil, sql.ErrNoRows)
		mUsers.On("FindByEmail", ctx, "alice@example.com").Return(storedUser(t), nil)

		_, _, errUnknown := svc.Login(ctx, "nobody@example.com", "secret123")
		_, _, errWrong := svc.Login(ctx, "alice@example.com", "wrongpass")

		assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
		assert.ErrorIs(t, errWrong, ErrInvalidCredentials)
	})

	t.Run("missing credentials", func(t *testing.T) {
		svc := NewAuthService(new(repoMocks.MockUserRepository), testAuthConfig())

		_, _, err := svc.Login(ctx, "", "")

		var vErr *ValidationError
		assert.ErrorAs(t, err, &vErr)
	})
}

func TestAuthService_ValidateToken(t *testing.T) {
	t.Run("garbage token", func(t *testing.T) {
		svc := NewAuthService(new(repoMocks.MockUserRepository), testAuthConfig())

		ident, err := svc.ValidateToken("not-a-token")

		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.Nil(t, ident)
	})

	t.Run("token signed with a different secret", func(t *testing.T) {
		issuer := NewAuthService(new(repoMocks.MockUserRepository), config.AuthConfig{
			JWTSecret:    "other-secret",
			TokenTTLDays: 7,
		})
		verifier := NewAuthService(new(repoMocks.MockUserRepository), testAuthConfig())

		mUsers := new(repoMocks.MockUserRepository)
		mUsers.On("CreateUser", mock.Anything, mock.Anything).Return(func(ctx context.Context, u *model.User) *model.User {
			return u
		}, nil)
		issuer.(*authService).users = mUsers

		token, _, err := issuer.Register(context.Background(), "Alice", "a@b.com", "secret123")
		require.NoError(t, err)

		ident, err := verifier.ValidateToken(token)

		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.Nil(t, ident)
	})
}

func TestNewLinkID(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id, err := newLinkID()
		require.NoError(t, err)
		assert.Len(t, id, linkIDLength)
		for _, r := range id {
			assert.Contains(t, linkIDAlphabet, string(r))
		}
		assert.False(t, seen[id], "duplicate id generated")
		seen[id] = true
	}
}
