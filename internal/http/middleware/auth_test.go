package middleware

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"linkvault/internal/model"
)

type stubValidator struct {
	ident *model.Identity
	err   error
	seen  string
}

func (s *stubValidator) ValidateToken(token string) (*model.Identity, error) {
	s.seen = token
	return s.ident, s.err
}

func TestRequireAuth(t *testing.T) {
	ident := &model.Identity{ID: "user-1", Email: "a@example.com"}

	newApp := func(v *stubValidator) *fiber.App {
		app := fiber.New()
		app.Get("/private", RequireAuth(v), func(c *fiber.Ctx) error {
			got := IdentityFromCtx(c)
			if got == nil {
				return c.SendString("anonymous")
			}
			return c.SendString(got.ID)
		})
		return app
	}

	t.Run("valid token", func(t *testing.T) {
		v := &stubValidator{ident: ident}
		app := newApp(v)

		req := httptest.NewRequest("GET", "/private", nil)
		req.Header.Set("Authorization", "Bearer tok123")
		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "tok123", v.seen)
	})

	t.Run("missing header", func(t *testing.T) {
		app := newApp(&stubValidator{ident: ident})

		req := httptest.NewRequest("GET", "/private", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("malformed header", func(t *testing.T) {
		app := newApp(&stubValidator{ident: ident})

		req := httptest.NewRequest("GET", "/private", nil)
		req.Header.Set("Authorization", "tok123")
		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("invalid token", func(t *testing.T) {
		app := newApp(&stubValidator{err: errors.New("expired")})

		req := httptest.NewRequest("GET", "/private", nil)
		req.Header.Set("Authorization", "Bearer stale")
		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}

func TestOptionalAuth(t *testing.T) {
	newApp := func(v *stubValidator) *fiber.App {
		app := fiber.New()
		app.Get("/open", OptionalAuth(v), func(c *fiber.Ctx) error {
			if ident := IdentityFromCtx(c); ident != nil {
				return c.SendString(ident.ID)
			}
			return c.SendString("anonymous")
		})
		return app
	}

	t.Run("valid token resolves identity", func(t *testing.T) {
		v := &stubValidator{ident: &model.Identity{ID: "user-1"}}
		app := newApp(v)

		req := httptest.NewRequest("GET", "/open", nil)
		req.Header.Set("Authorization", "Bearer tok123")
		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "user-1", string(body))
	})

	t.Run("no token passes anonymously", func(t *testing.T) {
		app := newApp(&stubValidator{})

		req := httptest.NewRequest("GET", "/open", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "anonymous", string(body))
	})

	t.Run("invalid token passes anonymously", func(t *testing.T) {
		app := newApp(&stubValidator{err: errors.New("bad token")})

		req := httptest.NewRequest("GET", "/open", nil)
		req.Header.Set("Authorization", "Bearer stale")
		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "anonymous", string(body))
	})
}
